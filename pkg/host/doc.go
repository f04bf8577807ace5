// Package host probes the environment a provisioning run operates on:
// OS family and codename from os-release, and GPU presence from the PCI
// device listing. It also defines the per-family Platform capabilities
// consumed by the driver strategies.
package host
