// Package httpserver runs the gateway's inbound HTTP listener.
package httpserver
