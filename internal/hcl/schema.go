package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes the top-level blocks of one file.
type fileRoot struct {
	Graphs []*graphBlock `hcl:"graph,block"`
	Remain hcl.Body      `hcl:",remain"`
}

type graphBlock struct {
	ID    string       `hcl:"id,label"`
	Nodes []*nodeBlock `hcl:"node,block"`
	Links []*linkBlock `hcl:"link,block"`
}

type nodeBlock struct {
	ID       string         `hcl:"id,label"`
	Kind     string         `hcl:"kind"`
	Type     hcl.Expression `hcl:"type,optional"`
	Settings hcl.Expression `hcl:"settings,optional"`
	Inputs   []*inputBlock  `hcl:"input,block"`
}

// inputBlock overrides the conversion policy or default of one input
// socket.
type inputBlock struct {
	Name    string         `hcl:"name,label"`
	Policy  string         `hcl:"policy,optional"`
	Default hcl.Expression `hcl:"default,optional"`
}

type linkBlock struct {
	From  string `hcl:"from"`
	To    string `hcl:"to"`
	Muted bool   `hcl:"muted,optional"`
}
