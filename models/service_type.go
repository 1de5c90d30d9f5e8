// models/service_type.go
package models

// ServiceType represents a type of service offered at stations.
// Read-mostly reference data.
type ServiceType struct {
	ID   int    `json:"id"`
	Name string `json:"name"` // e.g., "Oil Changing", "Wheel Alignment"
}
