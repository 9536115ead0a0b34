package domain

// TrackPoint - точка трека из GPX (trkpt)
type TrackPoint struct {
	Latitude  float64
	Longitude float64
}

// ToGeoCoordinate преобразует точку трека в координату без потерь
func (p TrackPoint) ToGeoCoordinate() GeoCoordinate {
	return GeoCoordinate{Latitude: p.Latitude, Longitude: p.Longitude}
}

// TrackSegment - упорядоченная последовательность точек
type TrackSegment struct {
	Points []TrackPoint
}

// Track - упорядоченная последовательность сегментов
type Track struct {
	Name     string
	Segments []TrackSegment
}

// PointCount возвращает суммарное количество точек во всех сегментах
func (t Track) PointCount() int {
	n := 0
	for _, s := range t.Segments {
		n += len(s.Points)
	}
	return n
}

// GPXDocument - разобранный GPX документ. Tracks всегда непустой.
type GPXDocument struct {
	Name   string
	Tracks []Track
}

// FirstTrack возвращает первый трек документа
func (d *GPXDocument) FirstTrack() (Track, bool) {
	if d == nil || len(d.Tracks) == 0 {
		return Track{}, false
	}
	return d.Tracks[0], true
}
