// Package services provides shared cross-cutting helpers for pipeline
// components: sentinel error markers with classification, and context
// annotation for structured logging.
package services
