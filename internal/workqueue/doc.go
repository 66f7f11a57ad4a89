// Package workqueue provides the FIFO queues that feed the event loop.
//
// TwoPriority keeps two independent lanes. Pop always drains the prioritized
// lane (UI refresh and render jobs) before touching the regular lane
// (box-processing jobs), so a refresh requested in the middle of a long chain
// of computations never waits behind that chain.
package workqueue
