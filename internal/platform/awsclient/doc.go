// Package awsclient builds the set of AWS service clients used by the
// provisioners and classifies remote API errors.
//
// Clients are constructed once per process from a single aws.Config and
// handed to the components that need them. Each component depends on a
// narrow interface of its own, so the concrete SDK clients here are only
// referenced at wiring time.
package awsclient
