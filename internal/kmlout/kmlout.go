// Package kmlout writes the KML descriptor referencing a composite
// coverage image and its legend.
package kmlout

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"coverage-compositor/pkg/geobox"
)

// Document describes one composite output: the ground overlay image, the
// screen-anchored legend, and the union bounding box they cover.
type Document struct {
	FolderName  string
	OverlayName string
	ImageHref   string
	LegendHref  string
	Box         geobox.Box
}

type anchor struct {
	X      string `xml:"x,attr"`
	Y      string `xml:"y,attr"`
	XUnits string `xml:"xunits,attr"`
	YUnits string `xml:"yunits,attr"`
}

type icon struct {
	Href string `xml:"href"`
}

type latLonBox struct {
	North float64 `xml:"north"`
	South float64 `xml:"south"`
	East  float64 `xml:"east"`
	West  float64 `xml:"west"`
}

type groundOverlay struct {
	Name      string    `xml:"name"`
	Icon      icon      `xml:"Icon"`
	LatLonBox latLonBox `xml:"LatLonBox"`
}

type screenOverlay struct {
	Name       string `xml:"name"`
	Icon       icon   `xml:"Icon"`
	OverlayXY  anchor `xml:"overlayXY"`
	ScreenXY   anchor `xml:"screenXY"`
	RotationXY anchor `xml:"rotationXY"`
	Size       anchor `xml:"size"`
}

type folder struct {
	Name          string        `xml:"name"`
	GroundOverlay groundOverlay `xml:"GroundOverlay"`
	ScreenOverlay screenOverlay `xml:"ScreenOverlay"`
}

type kmlRoot struct {
	XMLName xml.Name `xml:"kml"`
	XMLNS   string   `xml:"xmlns,attr"`
	Folder  folder   `xml:"Folder"`
}

// Marshal renders the document as a KML byte stream.
func Marshal(doc Document) ([]byte, error) {
	topLeft := anchor{X: "0", Y: "1", XUnits: "fraction", YUnits: "fraction"}
	root := kmlRoot{
		XMLNS: "http://www.opengis.net/kml/2.2",
		Folder: folder{
			Name: doc.FolderName,
			GroundOverlay: groundOverlay{
				Name: doc.OverlayName,
				Icon: icon{Href: doc.ImageHref},
				LatLonBox: latLonBox{
					North: doc.Box.North,
					South: doc.Box.South,
					East:  doc.Box.East,
					West:  doc.Box.West,
				},
			},
			ScreenOverlay: screenOverlay{
				Name:       "Legend",
				Icon:       icon{Href: doc.LegendHref},
				OverlayXY:  topLeft,
				ScreenXY:   topLeft,
				RotationXY: anchor{X: "0", Y: "0", XUnits: "fraction", YUnits: "fraction"},
				Size:       anchor{X: "0", Y: "0", XUnits: "pixels", YUnits: "pixels"},
			},
		},
	}

	body, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal KML: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

// Write marshals the document and writes it through a temporary file so an
// aborted run never leaves a partial descriptor behind.
func Write(path string, doc Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp descriptor: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write descriptor: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close descriptor: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move descriptor into place: %w", err)
	}
	return nil
}
