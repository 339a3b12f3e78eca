// Package enginetest provides test doubles and compliance suites for
// ucirun channel implementations.
//
// [Script] is an in-memory [ucirun.Channel] whose replies are keyed by
// command prefix, with hooks for injecting unsolicited lines and
// simulating transport failure. [RunChannelTests] is the behavioral
// contract any Channel implementation must satisfy.
package enginetest
