package commands

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/almanova/preocupacional/cmd/preocupacional/wizard"
	"github.com/almanova/preocupacional/internal/delivery"
	"github.com/almanova/preocupacional/internal/form"
	"github.com/almanova/preocupacional/internal/pdf"
	"github.com/almanova/preocupacional/internal/util"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	from      string
	sample    bool
	seed      uint64
	sex       string
	profile   string
	edgeCases int
	edgeTypes string
	overrides []string
	output    string
	request   bool
	saveYAML  string
}

// render: produce both PDFs offline from a snapshot file or a generated sample.
func renderCmd() *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the clinic and patient PDFs without sending them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), cmd.OutOrStdout(), time.Now(), f)
		},
	}
	cmd.Flags().StringVar(&f.from, "from", "", "YAML snapshot to render")
	cmd.Flags().BoolVar(&f.sample, "sample", false, "render a generated sample patient")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "seed for --sample (same seed, same patient)")
	cmd.Flags().StringVar(&f.sex, "sex", "", "sample patient sex: M or F (random if empty)")
	cmd.Flags().StringVar(&f.profile, "profile", "healthy", "sample medical profile: healthy, conditions, random")
	cmd.Flags().IntVar(&f.edgeCases, "edge-cases", 0, "chance (0-100) the sample gets edge case values")
	cmd.Flags().StringVar(&f.edgeTypes, "edge-case-types", "special-chars,long-names,old-dates,long-text,varied-ids",
		"comma-separated edge case types to enable")
	cmd.Flags().StringArrayVar(&f.overrides, "set", nil, "override a field: 'name=value' (repeatable)")
	cmd.Flags().StringVarP(&f.output, "output", "o", ".", "output directory")
	cmd.Flags().BoolVar(&f.request, "request", false, "also write the relay request body as JSON")
	cmd.Flags().StringVar(&f.saveYAML, "save-yaml", "", "write the rendered snapshot to this YAML file")
	return cmd
}

func runRender(ctx context.Context, out io.Writer, now time.Time, f renderFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	snap, err := loadRenderSnapshot(now, f)
	if err != nil {
		return err
	}

	overrides, err := util.ParseOverrides(f.overrides)
	if err != nil {
		return err
	}
	if err := util.ApplyOverrides(&snap, overrides); err != nil {
		return err
	}
	if snap.PersonalInfo == nil || snap.PersonalInfo.RUN == "" {
		return errors.New("snapshot has no patient RUN")
	}

	opts := pdf.Options{Now: func() time.Time { return now }}
	clinicPDF, err := pdf.Complete{Options: opts}.Render(ctx, snap)
	if err != nil {
		return fmt.Errorf("rendering clinic PDF: %w", err)
	}
	patientPDF, err := pdf.Consent{Options: opts}.Render(ctx, snap)
	if err != nil {
		return fmt.Errorf("rendering patient PDF: %w", err)
	}

	if err := os.MkdirAll(f.output, 0o700); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	clinicName, patientName := delivery.Filenames(snap.PersonalInfo.RUN, now)
	files := []struct {
		name string
		data []byte
	}{
		{clinicName, clinicPDF},
		{patientName, patientPDF},
	}
	if f.request {
		body, err := json.MarshalIndent(requestFor(snap, clinicPDF, patientPDF), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		files = append(files, struct {
			name string
			data []byte
		}{"request.json", body})
	}

	for _, file := range files {
		path := filepath.Join(f.output, file.name)
		if err := os.WriteFile(path, file.data, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", file.name, err)
		}
		fmt.Fprintf(out, "✓ %s (%d bytes)\n", path, len(file.data))
	}

	if f.saveYAML != "" {
		if err := wizard.SaveSnapshotYAML(snap, f.saveYAML); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ %s\n", f.saveYAML)
	}
	return nil
}

func loadRenderSnapshot(now time.Time, f renderFlags) (form.Snapshot, error) {
	switch {
	case f.from != "" && f.sample:
		return form.Snapshot{}, errors.New("--from and --sample are mutually exclusive")
	case f.from != "":
		return wizard.LoadSnapshotYAML(f.from)
	case f.sample:
		profile, err := util.ParseProfile(f.profile)
		if err != nil {
			return form.Snapshot{}, err
		}
		types, err := util.ParseEdgeCaseTypes(f.edgeTypes)
		if err != nil {
			return form.Snapshot{}, err
		}
		edge := util.EdgeCaseConfig{Percentage: f.edgeCases, Types: types}
		if err := edge.Validate(); err != nil {
			return form.Snapshot{}, err
		}
		return util.GenerateSnapshot(now, util.SampleOptions{Sex: f.sex, Profile: profile, Seed: f.seed, EdgeCases: edge})
	}
	return form.Snapshot{}, errors.New("one of --from or --sample is required")
}

func requestFor(s form.Snapshot, clinicPDF, patientPDF []byte) delivery.Request {
	p := s.PersonalInfo
	return delivery.Request{
		ClinicAttachment:  base64.StdEncoding.EncodeToString(clinicPDF),
		PatientAttachment: base64.StdEncoding.EncodeToString(patientPDF),
		Patient: delivery.Patient{
			FirstName:  p.Nombres,
			LastName:   p.Apellidos,
			Email:      p.Email,
			NationalID: p.RUN,
		},
	}
}
