// Package triage provides the business boundary for CivicSense's complaint
// intake pipeline. It defines the Service (validation, pipeline sequencing,
// persistence), the AI adapters (classification, sentiment scoring,
// translation) with their local fallbacks, duplicate detection, hotspot
// aggregation, the Store interface, and domain models.
package triage
