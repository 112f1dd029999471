// Package deps checks for the external programs subman shells out to.
package deps
