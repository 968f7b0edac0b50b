// Package healthcheck implements periodic probing of upstream AI API mirrors.
// A mirror that answers the probe with any status below 500 is considered
// healthy; transport errors and 5xx answers mark it down so the pool stops
// selecting it.
package healthcheck
