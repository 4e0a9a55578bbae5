package webui

// ControlUnit is one ControlNet conditioning input: an image plus the
// preprocessor module that turns it into a control map.
type ControlUnit struct {
	Image  []byte
	Module string
	Weight float64
}

// Params are the sampler settings shared by txt2img and img2img.
type Params struct {
	NegativePrompt    string
	Steps             int
	CFGScale          float64
	Width             int
	Height            int
	BatchSize         int
	SamplerName       string
	DenoisingStrength float64
}

func DefaultParams() Params {
	return Params{
		NegativePrompt:    "lowres, bad anatomy, worst quality, low quality",
		Steps:             20,
		CFGScale:          7,
		Width:             512,
		Height:            512,
		BatchSize:         1,
		SamplerName:       "Euler a",
		DenoisingStrength: 0.75,
	}
}

// GenerationRequest is built per HTTP request and passed by value; the client
// keeps no per-request state.
type GenerationRequest struct {
	Prompt          string
	Units           []ControlUnit
	InpaintImage    []byte
	InpaintMask     []byte
	KeepAspectRatio bool
	Params          Params
}

// IsInpaint reports whether both halves of an inpainting request are present.
func (r GenerationRequest) IsInpaint() bool {
	return len(r.InpaintImage) > 0 && len(r.InpaintMask) > 0
}

type controlNetArg struct {
	Enabled      bool    `json:"enabled"`
	Image        string  `json:"image"`
	Module       string  `json:"module"`
	Model        string  `json:"model"`
	Weight       float64 `json:"weight"`
	ResizeMode   string  `json:"resize_mode"`
	PixelPerfect bool    `json:"pixel_perfect"`
	ControlMode  string  `json:"control_mode"`
}

type alwaysOnScript struct {
	Args []controlNetArg `json:"args"`
}

type txt2imgPayload struct {
	Prompt          string                    `json:"prompt"`
	NegativePrompt  string                    `json:"negative_prompt,omitempty"`
	Steps           int                       `json:"steps"`
	CFGScale        float64                   `json:"cfg_scale"`
	Width           int                       `json:"width"`
	Height          int                       `json:"height"`
	BatchSize       int                       `json:"batch_size"`
	SamplerName     string                    `json:"sampler_name,omitempty"`
	AlwaysOnScripts map[string]alwaysOnScript `json:"alwayson_scripts,omitempty"`
}

type img2imgPayload struct {
	txt2imgPayload
	InitImages        []string `json:"init_images"`
	Mask              string   `json:"mask"`
	DenoisingStrength float64  `json:"denoising_strength"`
	InpaintingFill    int      `json:"inpainting_fill"`
	InpaintFullRes    bool     `json:"inpaint_full_res"`
	ResizeMode        int      `json:"resize_mode"`
}

type generationResponse struct {
	Images []string `json:"images"`
	Info   string   `json:"info"`
}
