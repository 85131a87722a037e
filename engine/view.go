package engine

// AntiAliasing selects the post-process anti-aliasing pass.
type AntiAliasing int

const (
	AntiAliasingNone AntiAliasing = iota
	AntiAliasingFXAA
)

// ToneMapping selects the HDR to display mapping operator.
type ToneMapping int

const (
	ToneMappingLinear ToneMapping = iota
	ToneMappingACES
)

// Dithering selects the dithering applied after tone mapping.
type Dithering int

const (
	DitheringNone Dithering = iota
	DitheringTemporal
)

// Viewport is a rectangle in framebuffer pixels, origin bottom-left.
type Viewport struct {
	Left, Bottom  int
	Width, Height int
}

// View renders a scene through a camera into a viewport.
type View struct {
	name     string
	scene    *Scene
	camera   *Camera
	viewport Viewport

	antiAliasing AntiAliasing
	toneMapping  ToneMapping
	dithering    Dithering
	sampleCount  int
	shadows      bool
}

func newView(name string) *View {
	return &View{
		name:         name,
		antiAliasing: AntiAliasingFXAA,
		toneMapping:  ToneMappingACES,
		dithering:    DitheringTemporal,
		sampleCount:  1,
		shadows:      true,
	}
}

func (v *View) Name() string { return v.name }

func (v *View) SetScene(s *Scene)              { v.scene = s }
func (v *View) Scene() *Scene                  { return v.scene }
func (v *View) SetCamera(c *Camera)            { v.camera = c }
func (v *View) Camera() *Camera                { return v.camera }
func (v *View) SetViewport(vp Viewport)        { v.viewport = vp }
func (v *View) Viewport() Viewport             { return v.viewport }
func (v *View) SetAntiAliasing(a AntiAliasing) { v.antiAliasing = a }
func (v *View) AntiAliasing() AntiAliasing     { return v.antiAliasing }
func (v *View) SetToneMapping(t ToneMapping)   { v.toneMapping = t }
func (v *View) ToneMapping() ToneMapping       { return v.toneMapping }
func (v *View) SetDithering(d Dithering)       { v.dithering = d }
func (v *View) Dithering() Dithering           { return v.dithering }
func (v *View) SetShadowsEnabled(on bool)      { v.shadows = on }
func (v *View) ShadowsEnabled() bool           { return v.shadows }

// SetSampleCount sets the MSAA sample count. Values below 1 become 1.
func (v *View) SetSampleCount(n int) {
	if n < 1 {
		n = 1
	}
	v.sampleCount = n
}

// SampleCount is the MSAA sample count, 1 when multisampling is off.
func (v *View) SampleCount() int { return v.sampleCount }

