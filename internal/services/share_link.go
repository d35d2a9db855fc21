package services

import (
	"strconv"
	"strings"

	"supply-route-service/internal/domain"
)

const directionsBaseURL = "https://www.google.com/maps/dir"

// DirectionsLink builds a shareable directions URL: origin first, then every
// stop, each as "lat,lon".
func DirectionsLink(origin domain.Coordinates, stops []domain.Coordinates) string {
	var b strings.Builder
	b.WriteString(directionsBaseURL)
	for _, c := range append([]domain.Coordinates{origin}, stops...) {
		b.WriteByte('/')
		b.WriteString(strconv.FormatFloat(c.Lat, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(c.Lon, 'f', -1, 64))
	}
	return b.String()
}

func ShareMessage(link string) string {
	return "Route link: " + link
}
