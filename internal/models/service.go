package models

const genericServiceDescription = "Service will be performed according to the selected booking type."

var serviceDescriptions = map[string]string{
	ServiceOilChange:       "Oil and filter replacement, including basic fluid checks.",
	ServiceBrakeAdjustment: "Brake inspection and adjustment, including safety check.",
	ServiceFullService:     "Full vehicle service including inspection and basic maintenance checks.",
	ServiceTireChange:      "Tire change including pressure check and visual inspection.",
}

// DescribeService maps a service type to the text shown as "what will happen".
// Unknown types get a generic description.
func DescribeService(serviceType string) string {
	if desc, ok := serviceDescriptions[serviceType]; ok {
		return desc
	}
	return genericServiceDescription
}

// ServiceTypes lists the known service types in display order.
func ServiceTypes() []string {
	return []string{ServiceOilChange, ServiceBrakeAdjustment, ServiceFullService, ServiceTireChange}
}
