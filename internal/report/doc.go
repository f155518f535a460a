// Package report holds the outcome of one evaluation pass and the
// presenters it is pushed to.
//
// A Report is built by the executor after every non-animation pass. It
// carries an explicit Result per computed or skipped node, a snapshot of
// every node's status and the cumulative update time of each up-to-date
// node. Presenters turn it into log lines, Prometheus series or a
// socket.io message; none of them may modify it.
package report
