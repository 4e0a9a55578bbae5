package webui

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownModule = errors.New("webui: unknown control module")

// controlModels maps ControlNet preprocessor modules to the SD1.5 model that
// consumes their output. "None" means the module works without a model.
var controlModels = map[string]string{
	"canny":             "control_v11p_sd15_canny",
	"depth_midas":       "control_v11f1p_sd15_depth",
	"depth_zoe":         "control_v11f1p_sd15_depth",
	"openpose":          "control_v11p_sd15_openpose",
	"openpose_full":     "control_v11p_sd15_openpose",
	"lineart_realistic": "control_v11p_sd15_lineart",
	"lineart_anime":     "control_v11p_sd15s2_lineart_anime",
	"scribble_pidinet":  "control_v11p_sd15_scribble",
	"softedge_pidinet":  "control_v11p_sd15_softedge",
	"seg_ofade20k":      "control_v11p_sd15_seg",
	"mlsd":              "control_v11p_sd15_mlsd",
	"normal_bae":        "control_v11p_sd15_normalbae",
	"shuffle":           "control_v11e_sd15_shuffle",
	"tile_resample":     "control_v11f1e_sd15_tile",
	"inpaint_only":      "control_v11p_sd15_inpaint",
	"reference_only":    "None",
}

// ModelFor returns the ControlNet model paired with module.
func ModelFor(module string) (string, error) {
	model, ok := controlModels[module]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownModule, module)
	}
	return model, nil
}

// Modules lists the supported module names in sorted order.
func Modules() []string {
	names := make([]string, 0, len(controlModels))
	for name := range controlModels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
