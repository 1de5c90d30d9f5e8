// File: models/station.go
package models

import "strings"

// ServiceStation represents a car-service station as served by the upstream
// accounts API. Mutations are authorized upstream (admin/station-owner roles).
type ServiceStation struct {
	ID              int           `json:"id,omitempty"`
	Name            string        `json:"name"`
	Address         string        `json:"address"`
	Latitude        float64       `json:"latitude,omitempty"`
	Longitude       float64       `json:"longitude,omitempty"`
	Phone           string        `json:"phone,omitempty"`
	Email           string        `json:"email,omitempty"`
	ServicesOffered []ServiceType `json:"services_offered,omitempty"`
	Owner           int           `json:"owner,omitempty"`
}

// OffersService reports whether the station lists a service type by name.
func (s ServiceStation) OffersService(name string) bool {
	for _, svc := range s.ServicesOffered {
		if strings.EqualFold(svc.Name, name) {
			return true
		}
	}
	return false
}
