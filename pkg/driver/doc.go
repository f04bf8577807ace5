// Package driver implements the interchangeable GPU driver installation
// strategies: the vendor-supplied stack and the OS-distribution-packaged
// stack. A strategy is a fixed, sequential step list over package and
// repository operations; each mutating step runs under the provisioner
// retry policy, and any exhausted step is fatal to the whole run.
package driver
