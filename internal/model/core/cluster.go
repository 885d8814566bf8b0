package core

// ClusterGroup is a named partition of records clustered and toggled together.
type ClusterGroup struct {
	Name      string   `json:"name"`
	Label     string   `json:"label"`
	Kind      Kind     `json:"kind"`
	RecordIDs []string `json:"recordIds"`
}

// ClusterOptions are passed through to the map renderer's cluster layer.
type ClusterOptions struct {
	MaxClusterRadius           int     `json:"maxClusterRadius"`
	DisableClusteringAtZoom    int     `json:"disableClusteringAtZoom"`
	SpiderfyDistanceMultiplier float64 `json:"spiderfyDistanceMultiplier"`
	SpiderfyOnMaxZoom          bool    `json:"spiderfyOnMaxZoom"`
	ShowCoverageOnHover        bool    `json:"showCoverageOnHover"`
	ZoomToBoundsOnClick        bool    `json:"zoomToBoundsOnClick"`
}
