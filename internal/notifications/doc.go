// Package notifications pushes pipeline events to an ntfy topic. Without a
// configured topic every notification is a silent noop.
package notifications
