package profiler

// MemMoment is a dense, owned implementation of MutableMoment backed by a
// row-major []float64. It exists so the core can be exercised without a
// real ODIM/IRIS/NEXRAD decoder: tests and the cmd/vp demo build volumes
// directly against this type, while production backends implement Moment/
// PolarScan/PolarVolume against their own decoded buffers.
type MemMoment struct {
	nAzim, nRang      int
	gain, offset      float64
	nodata, undetect  float64
	data              []float64
}

// NewMemMoment allocates a moment raster initialized to nodata.
func NewMemMoment(nAzim, nRang int, gain, offset, nodata, undetect float64) *MemMoment {
	data := make([]float64, nAzim*nRang)
	for i := range data {
		data[i] = nodata
	}
	return &MemMoment{nAzim: nAzim, nRang: nRang, gain: gain, offset: offset, nodata: nodata, undetect: undetect, data: data}
}

func (m *MemMoment) Gain() float64     { return m.gain }
func (m *MemMoment) Offset() float64   { return m.offset }
func (m *MemMoment) Nodata() float64   { return m.nodata }
func (m *MemMoment) Undetect() float64 { return m.undetect }

func (m *MemMoment) index(iAzim, iRang int) int {
	iAzim = ((iAzim % m.nAzim) + m.nAzim) % m.nAzim
	return iAzim*m.nRang + iRang
}

func (m *MemMoment) Raw(iAzim, iRang int) float64 {
	return m.data[m.index(iAzim, iRang)]
}

func (m *MemMoment) SetRaw(iAzim, iRang int, raw float64) {
	m.data[m.index(iAzim, iRang)] = raw
}

// SetReal encodes and stores a real-valued sample, the inverse of RealAt.
func (m *MemMoment) SetReal(iAzim, iRang int, value float64) {
	m.SetRaw(iAzim, iRang, (value-m.offset)/m.gain)
}

// MemScan is an owned, in-memory PolarScan.
type MemScan struct {
	elevRad     float64
	beamWidth   float64
	antHeight   float64
	rangeScale  float64
	rangeStart  float64
	nAzim       int
	nRang       int
	nyquist     float64
	moments     map[string]MutableMoment
}

// NewMemScan allocates a scan of the given geometry with no moments.
func NewMemScan(elevRad, beamWidth, antHeight, rangeScale, rangeStart float64, nAzim, nRang int) *MemScan {
	return &MemScan{
		elevRad: elevRad, beamWidth: beamWidth, antHeight: antHeight,
		rangeScale: rangeScale, rangeStart: rangeStart,
		nAzim: nAzim, nRang: nRang,
		moments: make(map[string]MutableMoment),
	}
}

func (s *MemScan) ElevationRad() float64 { return s.elevRad }
func (s *MemScan) BeamWidthRad() float64 { return s.beamWidth }
func (s *MemScan) AntennaHeight() float64 { return s.antHeight }
func (s *MemScan) RangeScale() float64   { return s.rangeScale }
func (s *MemScan) RangeStart() float64   { return s.rangeStart }
func (s *MemScan) NAzim() int            { return s.nAzim }
func (s *MemScan) NRang() int            { return s.nRang }
func (s *MemScan) Nyquist() float64      { return s.nyquist }
func (s *MemScan) SetNyquist(v float64)  { s.nyquist = v }

func (s *MemScan) GetMoment(name string) (Moment, bool) {
	m, ok := s.moments[name]
	return m, ok
}

func (s *MemScan) EnsureMoment(name string, gain, offset, nodata, undetect float64) MutableMoment {
	if m, ok := s.moments[name]; ok {
		return m
	}
	m := NewMemMoment(s.nAzim, s.nRang, gain, offset, nodata, undetect)
	s.moments[name] = m
	return m
}

// PutMoment installs an already-built moment under name, overwriting any
// existing one. Used by tests that want exact control over encoding.
func (s *MemScan) PutMoment(name string, m MutableMoment) {
	s.moments[name] = m
}

// MemVolume is an owned, in-memory PolarVolume.
type MemVolume struct {
	scans      []PolarScan
	lon, lat   float64
	height     float64
	wavelength float64
	vcp        int
	hasVCP     bool
}

// NewMemVolume builds a volume from scans already ordered by ascending
// elevation.
func NewMemVolume(siteLon, siteLat, siteHeight, wavelengthCM float64, scans ...PolarScan) *MemVolume {
	return &MemVolume{scans: scans, lon: siteLon, lat: siteLat, height: siteHeight, wavelength: wavelengthCM}
}

func (v *MemVolume) Scans() []PolarScan     { return v.scans }
func (v *MemVolume) SiteLon() float64       { return v.lon }
func (v *MemVolume) SiteLat() float64       { return v.lat }
func (v *MemVolume) SiteHeight() float64    { return v.height }
func (v *MemVolume) WavelengthCM() float64  { return v.wavelength }
func (v *MemVolume) VCP() (int, bool)       { return v.vcp, v.hasVCP }

// SetVCP attaches a volume coverage pattern integer (NEXRAD-style).
func (v *MemVolume) SetVCP(vcp int) {
	v.vcp = vcp
	v.hasVCP = true
}
