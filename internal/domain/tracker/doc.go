// Package tracker deduplicates in-flight classification checks.
//
// A Tracker belongs to one interception channel and holds at most one
// pending NavigationRequest per (tab, normalized URL). TryBegin is the
// only way in; End and Sweep are the ways out. Browser lifecycle events
// call End, and a periodic Sweep with a generous age bound reclaims
// entries whose cleanup event never arrived.
package tracker
