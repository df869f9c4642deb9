// Package match scores candidate labels against a typed query. Higher
// scores are better matches; a label that cannot match at all is rejected
// outright. The relative weight of the match categories and the penalty
// curve are policy, not algorithm, so they live in a Weights struct the
// caller can tune.
package match
