// Package file provides a small parser for line-oriented system files
// such as /etc/os-release and /proc/modules.
package file
