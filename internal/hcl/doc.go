// Package hcl loads graph description files into in-memory host graphs.
//
// A file holds any number of graph blocks:
//
//	graph "demo" {
//	  node "a" {
//	    kind     = "value"
//	    type     = number
//	    settings = { value = 2 }
//	  }
//	  node "sum" {
//	    kind = "math"
//	    input "b" {
//	      policy  = "lenient"
//	      default = 1
//	    }
//	  }
//	  link {
//	    from = "a.out"
//	    to   = "sum.a"
//	  }
//	}
//
// Nodes are built through the kind registry, so every kind a module
// registers can be used from a file.
package hcl
