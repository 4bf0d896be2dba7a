// Package makefile generates the wrapper Makefile a project can commit
// instead of depending on this tool being installed.
package makefile
