// Package mirror tracks the upstream AI API base URLs the gateway may call.
// Each mirror carries a health flag maintained by the health prober; the Pool
// hands out healthy mirrors using a selection strategy.
package mirror
