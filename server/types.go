package server

// JobRequest is one unit of work submitted over the wire: a shell script
// and the environment variables it runs with.
type JobRequest struct {
	Script string   `json:"script"`
	Env    []string `json:"env,omitempty"`
}

// JobResponse reports the completed execution. A nonzero exit code is a
// normal response, not an RPC error.
type JobResponse struct {
	ID       string `json:"id"`
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}
