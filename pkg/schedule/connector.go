package schedule

// Connector is the external contract for a connector element — an SVG
// line (or similar) whose endpoints track two other elements (spec §6
// "Connector element contract").
type Connector interface {
	Element
	PointA() Element
	PointB() Element
	// UpdateEndpoints repositions the connector once, from the current
	// bounding boxes of PointA/PointB.
	UpdateEndpoints()
	// ContinuouslyUpdateEndpoints starts a host-frame-tick-driven loop
	// that keeps calling UpdateEndpoints until CancelContinuousUpdates.
	ContinuouslyUpdateEndpoints()
	CancelContinuousUpdates()
}

// connectorStash holds the bookkeeping a connector-category clip needs
// across its phases (spec §4.2 ConnectorSetter/Entrance/Exit).
type connectorStash struct {
	continuousUpdatesStarted bool
}
