// Package ports defines the interfaces between the shipping logic in
// internal/app and the infrastructure adapters in internal/adapters.
//
//   - [TrackReader]: loads a track from a GPX file
//   - [MarkSender]: opens sessions to the remote-control port
//   - [MarkSession]: sends commands over one open session
//
// internal/app depends only on these interfaces, so its tests run against
// in-memory fakes.
package ports
