package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Form holds the fields submitted along with the file. Values missing on the
// command line fall back to the TOML profile given with --profile.
type Form struct {
	File              string
	Profile           string
	Email             string `masq:"secret"`
	Variant           string
	VideoLang         string
	OriginalSubtitles bool
	DubbedSubtitles   bool
}

// profile is the on-disk layout of a --profile file
type profile struct {
	Form struct {
		Email             string `toml:"email"`
		Variant           string `toml:"variant"`
		VideoLang         string `toml:"video_lang"`
		OriginalSubtitles bool   `toml:"original_subtitles"`
		DubbedSubtitles   bool   `toml:"dubbed_subtitles"`
	} `toml:"form"`
}

// Flags returns CLI flags for the submission form
func (c *Form) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "Video file to dub",
			Required:    true,
			Destination: &c.File,
		},
		&cli.StringFlag{
			Name:        "profile",
			Usage:       "TOML file with default form values",
			Destination: &c.Profile,
			Sources:     cli.EnvVars("DUBBING_PROFILE"),
		},
		&cli.StringFlag{
			Name:        "email",
			Usage:       "E-mail notified when the dub is ready",
			Destination: &c.Email,
			Sources:     cli.EnvVars("DUBBING_EMAIL"),
		},
		&cli.StringFlag{
			Name:        "variant",
			Usage:       "Target language variant",
			Destination: &c.Variant,
		},
		&cli.StringFlag{
			Name:        "video-lang",
			Usage:       "Language spoken in the video",
			Destination: &c.VideoLang,
		},
		&cli.BoolFlag{
			Name:        "original-subtitles",
			Usage:       "Also produce subtitles in the original language",
			Destination: &c.OriginalSubtitles,
		},
		&cli.BoolFlag{
			Name:        "dubbed-subtitles",
			Usage:       "Also produce subtitles in the dubbed language",
			Destination: &c.DubbedSubtitles,
		},
	}
}

// Fields merges the profile and flags into the form fields sent to the
// service. Switches are sent as "on" only when enabled, like an HTML checkbox.
func (c *Form) Fields() (map[string]string, error) {
	var p profile
	if c.Profile != "" {
		raw, err := os.ReadFile(c.Profile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read profile", goerr.V("path", c.Profile))
		}
		if err := toml.Unmarshal(raw, &p); err != nil {
			return nil, goerr.Wrap(err, "failed to parse profile", goerr.V("path", c.Profile))
		}
	}

	fields := map[string]string{
		"email":      firstNonEmpty(c.Email, p.Form.Email),
		"variant":    firstNonEmpty(c.Variant, p.Form.Variant),
		"video_lang": firstNonEmpty(c.VideoLang, p.Form.VideoLang),
	}
	if c.OriginalSubtitles || p.Form.OriginalSubtitles {
		fields["original_subtitles"] = "on"
	}
	if c.DubbedSubtitles || p.Form.DubbedSubtitles {
		fields["dubbed_subtitles"] = "on"
	}

	for k, v := range fields {
		if v == "" {
			delete(fields, k)
		}
	}
	return fields, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
