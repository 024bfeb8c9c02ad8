// Package services defines the shared error taxonomy for upstream
// collaborators (the completion service and the metadata provider) and the
// helpers used to classify failures at the transport boundary.
package services
