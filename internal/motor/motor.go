// Package motor abstracts the vibration motor driver: an external
// collaborator, interface only. The daemon starts it when the controller
// reports IsAlerting and stops it on StopAlerting; the alarm controller
// itself never depends on this package.
package motor

// Driver controls the vibration motor.
type Driver interface {
	Start() error
	Stop() error
}
