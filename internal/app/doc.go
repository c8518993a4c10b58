// Package app assembles the gateway's components into a runnable service.
package app
