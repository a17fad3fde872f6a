// Package services contains the core application services: index
// building, query rewriting, answer synthesis, response shaping and the
// per-session assistant that orchestrates them.
package services
