package intelligence

import "errors"

// ErrHallucinatedTask means a generator response referenced a task id that
// was not part of the input. The whole response is discarded.
var ErrHallucinatedTask = errors.New("response references unknown task id")

// ErrNoCandidates means a chain response carried no usable candidate.
var ErrNoCandidates = errors.New("no valid chain candidates")

// ErrDuplicateChain means two candidates in one response shared a chain id.
// Judge verdicts name chains by id, so the set is ambiguous and rejected.
var ErrDuplicateChain = errors.New("duplicate chain id")
