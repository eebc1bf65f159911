// Package builtin provides the composition operators every Tale registry starts
// with: Action, Sequence, Group, Switch, Loop, Ignore, Delay and Live.
//
// Composites keep child definitions and instantiate only the children that are
// live. Jumps and forced choices are requests (Select, Restart, Choose) queued
// with Instance.Please, so they run after the current update has returned.
package builtin
