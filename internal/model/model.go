package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Build{},
	&Marker{},
	&ClusterGroup{},
	&TimelineEntry{},
	&AccuracyOverlay{},
	&Diagnostic{},
}

// Geometry columns are declared as "geometry". PostGIS provides the type on
// Postgres; SQLite stores the WKB blob under that declared type.

////////////////////////
// BUILD MODELS
////////////////////////

// Build is one generated view. Every other table hangs off it.
type Build struct {
	gorm.Model
	BuildID      string         `json:"buildId" gorm:"size:64;uniqueIndex"`
	GeneratedAt  time.Time      `json:"generatedAt"`
	Center       geom.Point     `json:"center" gorm:"type:geometry"`
	MediaBaseURL string         `json:"mediaBaseUrl" gorm:"size:255"`
	Timezone     string         `json:"timezone" gorm:"size:64"`
	Cluster      datatypes.JSON `json:"cluster"` // renderer cluster options
	Stats        datatypes.JSON `json:"stats"`
	Total        int            `json:"total"`
	Rejected     int            `json:"rejected"`
}

func (*Build) TableName() string {
	return "builds"
}

// Marker is one normalized record.
type Marker struct {
	ID      uint  `json:"id" gorm:"primarykey;autoIncrement;"`
	BuildID uint  `json:"buildId" gorm:"index:idx_marker_build_id"`
	Build   Build `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:BuildID;"`

	RecordID string `json:"recordId" gorm:"size:64;index:idx_marker_record_id"`
	Seq      int    `json:"seq"`
	Source   string `json:"source" gorm:"size:16"`
	Line     int    `json:"line"`

	Position       geom.Point     `json:"position" gorm:"type:geometry"`
	Timestamp      *time.Time     `json:"timestamp" gorm:"index:idx_marker_timestamp"`
	Kind           string         `json:"kind" gorm:"size:16;index:idx_marker_kind"`
	Title          string         `json:"title" gorm:"size:512"`
	Description    string         `json:"description" gorm:"size:4000"`
	MediaRef       string         `json:"mediaRef" gorm:"size:1024"`
	AccuracyMeters *float64       `json:"accuracyMeters"`
	Color          string         `json:"color" gorm:"size:32"`
	Icon           string         `json:"icon" gorm:"size:32"`
	Details        datatypes.JSON `json:"details"` // [{key, value}] in header order
}

func (*Marker) TableName() string {
	return "markers"
}

// ClusterGroup is a named marker partition.
type ClusterGroup struct {
	ID        uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	BuildID   uint           `json:"buildId" gorm:"index:idx_cluster_group_build_id"`
	Build     Build          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:BuildID;"`
	Name      string         `json:"name" gorm:"size:32"`
	Label     string         `json:"label" gorm:"size:64"`
	Kind      string         `json:"kind" gorm:"size:16"`
	Position  int            `json:"position"` // display order
	RecordIDs datatypes.JSON `json:"recordIds"`
}

func (*ClusterGroup) TableName() string {
	return "cluster_groups"
}

// TimelineEntry is one timeline row in display order.
type TimelineEntry struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	BuildID   uint      `json:"buildId" gorm:"index:idx_timeline_entry_build_id"`
	Build     Build     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:BuildID;"`
	EntryID   string    `json:"entryId" gorm:"size:32"`
	RecordID  string    `json:"recordId" gorm:"size:64"`
	Position  int       `json:"position"`
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date" gorm:"size:10;index:idx_timeline_entry_date"`
	Clock     string    `json:"time" gorm:"size:8"`
}

func (*TimelineEntry) TableName() string {
	return "timeline_entries"
}

// AccuracyOverlay is an uncertainty circle. Area holds the circle as a
// polygon so spatial queries need no radius math.
type AccuracyOverlay struct {
	ID            uint         `json:"id" gorm:"primarykey;autoIncrement;"`
	BuildID       uint         `json:"buildId" gorm:"index:idx_overlay_build_id"`
	Build         Build        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:BuildID;"`
	RecordID      string       `json:"recordId" gorm:"size:64"`
	Kind          string       `json:"kind" gorm:"size:16"`
	Center        geom.Point   `json:"center" gorm:"type:geometry"`
	Area          geom.Polygon `json:"area" gorm:"type:geometry"`
	RadiusMeters  float64      `json:"radius"`
	FillColor     string       `json:"fillColor" gorm:"size:16"`
	StrokeColor   string       `json:"strokeColor" gorm:"size:16"`
	FillOpacity   float64      `json:"fillOpacity"`
	StrokeOpacity float64      `json:"opacity"`
	Weight        int          `json:"weight"`
}

func (*AccuracyOverlay) TableName() string {
	return "accuracy_overlays"
}

// Diagnostic is one entry of the end-of-build report.
type Diagnostic struct {
	ID       uint   `json:"id" gorm:"primarykey;autoIncrement;"`
	BuildID  uint   `json:"buildId" gorm:"index:idx_diagnostic_build_id"`
	Build    Build  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:BuildID;"`
	Code     string `json:"code" gorm:"size:32"`
	Source   string `json:"source" gorm:"size:16"`
	Line     int    `json:"line"`
	RecordID string `json:"recordId" gorm:"size:64"`
	Message  string `json:"message" gorm:"size:1000"`
}

func (*Diagnostic) TableName() string {
	return "diagnostics"
}
