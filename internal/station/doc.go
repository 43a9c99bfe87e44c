// Package station owns the shuttle boarding protocol.
//
// Ownership boundary:
// - passenger lifecycle (one goroutine per passenger)
//
// - seat accounting (Gate) and boarding admission (Counters)
//
// - phase signaling (Signals, driven only by the Controller)
//
// Lifecycle order:
// - Home -> AtPlatform -> HoldingSeat -> Boarded -> OnTrain -> Alighted
//
// - any timed wait before OnTrain may renege; reneging releases whatever
// the passenger holds and settles it.
//
// Every passenger contributes exactly one departure. The controller halts
// once all passengers have departed and nobody is left aboard.
package station
