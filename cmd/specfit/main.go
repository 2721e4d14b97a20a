// Command specfit analyzes compound spectra from a SQLite catalog:
// linear unmixing of composite spectra, cascaded energy-transfer fits,
// and the closed-form Förster, Strickler-Berg, and oscillator-strength
// evaluations.
//
// Usage:
//
//	specfit [command] [flags]
//
// Examples:
//
//	specfit compounds --db catalog.db
//	specfit unmix --db catalog.db --job unmix.toml
//	specfit transfer --db catalog.db --job chain.toml --forward
//	specfit forster --db catalog.db --donor pcc001 --acceptor pcc002 \
//	    --low 450 --high 650 --donor-qy 0.9 --refractive-index 1.4 \
//	    --donor-lifetime 5 --distance 40
//	specfit lifetime --db catalog.db --id pcc001 --low 300 --high 600 \
//	    --refractive-index 1.36
//	specfit dipole --db catalog.db --id pcc001 --low 400 --high 600
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-spectra/analyze/dipole"
	"github.com/cwbudde/algo-spectra/analyze/forster"
	"github.com/cwbudde/algo-spectra/analyze/lifetime"
	"github.com/cwbudde/algo-spectra/analyze/transfer"
	"github.com/cwbudde/algo-spectra/analyze/unmix"
	"github.com/cwbudde/algo-spectra/spectral/series"
	"github.com/cwbudde/algo-spectra/stats/residual"
	"github.com/cwbudde/algo-spectra/store"
)

var (
	dbPath string

	unmixJobPath string

	transferJobPath string
	transferForward bool

	forsterDonor       string
	forsterAcceptor    string
	forsterLow         float64
	forsterHigh        float64
	forsterOrientation float64
	forsterDonorQY     float64
	forsterRefraction  float64
	forsterLifetime    float64
	forsterDistance    float64
	forsterAnchorNM    float64
	forsterAnchorEps   float64

	lifetimeID         string
	lifetimeLow        float64
	lifetimeHigh       float64
	lifetimeRefraction float64
	lifetimeQY         float64
	lifetimeAnchorNM   float64
	lifetimeAnchorEps  float64

	dipoleID        string
	dipoleLow       float64
	dipoleHigh      float64
	dipoleAnchorNM  float64
	dipoleAnchorEps float64
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "specfit",
		Short:        "Spectral fitting and photophysics from a compound catalog",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "catalog.db", "path to the SQLite compound catalog")

	rootCmd.AddCommand(newCompoundsCmd())
	rootCmd.AddCommand(newUnmixCmd())
	rootCmd.AddCommand(newTransferCmd())
	rootCmd.AddCommand(newForsterCmd())
	rootCmd.AddCommand(newLifetimeCmd())
	rootCmd.AddCommand(newDipoleCmd())

	return rootCmd
}

// withStore opens the catalog, runs fn, and closes the catalog again.
func withStore(fn func(ctx context.Context, st *store.Store) error) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close catalog: %v\n", cerr)
		}
	}()

	return fn(context.Background(), st)
}

func newCompoundsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compounds",
		Short: "List catalog compounds",
		Args:  cobra.NoArgs,
		RunE:  runCompoundsCmd,
	}
}

func runCompoundsCmd(cmd *cobra.Command, _ []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		compounds, err := st.ListCompounds(ctx)
		if err != nil {
			return fmt.Errorf("failed to list compounds: %w", err)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintf(tw, "ID\tName\tDatabase\tEpsilon\tAt [nm]\tQY\n"); err != nil {
			return err
		}

		for _, c := range compounds {
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%.6g\t%.6g\t%.4g\n",
				c.ID, c.Name, c.DatabaseName, c.Epsilon, c.EpsilonWavelength, c.QuantumYield); err != nil {
				return err
			}
		}

		return tw.Flush()
	})
}

func newUnmixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unmix",
		Short: "Fit component fractions of a composite spectrum",
		Args:  cobra.NoArgs,
		RunE:  runUnmixCmd,
	}
	cmd.Flags().StringVar(&unmixJobPath, "job", "", "TOML job file")

	return cmd
}

func runUnmixCmd(cmd *cobra.Command, _ []string) error {
	var job unmixJob
	if err := loadJob(unmixJobPath, &job); err != nil {
		return err
	}

	kind, err := parseKind(job.Kind)
	if err != nil {
		return err
	}

	return withStore(func(ctx context.Context, st *store.Store) error {
		composite, err := loadSpectrum(ctx, st, job.Composite, kind)
		if err != nil {
			return err
		}

		components := make([]unmix.Component, len(job.Components))
		for i, jc := range job.Components {
			spectrum, err := loadSpectrum(ctx, st, jc.ID, kind)
			if err != nil {
				return err
			}

			components[i] = unmix.Component{
				Spectrum:      spectrum,
				Concentration: jc.Concentration,
				Guess:         guessOrDefault(jc.Guess),
			}
		}

		res, err := unmix.Fit(composite, components, unmix.Config{
			Wavelengths:   job.Wavelengths,
			Tolerance:     job.Tolerance,
			MaxIterations: job.MaxIterations,
		})
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintf(tw, "ID\tFraction\tConcentration\n"); err != nil {
			return err
		}

		for i, fit := range res.Components {
			if _, err := fmt.Fprintf(tw, "%s\t%.6g\t%.6g\n",
				job.Components[i].ID, fit.Fraction, fit.Concentration); err != nil {
				return err
			}
		}

		if err := tw.Flush(); err != nil {
			return err
		}

		return printFitDiagnostics(cmd, res.Stats, res.Iterations, res.Converged)
	})
}

func newTransferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Evaluate or fit a cascaded energy-transfer chain",
		Args:  cobra.NoArgs,
		RunE:  runTransferCmd,
	}
	cmd.Flags().StringVar(&transferJobPath, "job", "", "TOML job file")
	cmd.Flags().BoolVar(&transferForward, "forward", false, "evaluate the job's transfer values instead of fitting them")

	return cmd
}

func runTransferCmd(cmd *cobra.Command, _ []string) error {
	var job transferJob
	if err := loadJob(transferJobPath, &job); err != nil {
		return err
	}

	components := make([]transfer.Component, len(job.Components))
	transfers := make([]float64, len(job.Components))
	for i, jc := range job.Components {
		components[i] = transfer.Component{
			SpectrumID:       jc.ID,
			AbsorptionWeight: jc.Weight,
			QuantumYield:     jc.QuantumYield,
			Guess:            guessOrDefault(jc.Guess),
		}
		transfers[i] = jc.Transfer
	}

	if transferForward {
		res, err := transfer.Forward(components, transfers)
		if err != nil {
			return err
		}

		return printYields(cmd, job, res.Yields, res.TotalQY)
	}

	return withStore(func(ctx context.Context, st *store.Store) error {
		composite, err := loadSpectrum(ctx, st, job.Composite, series.Emission)
		if err != nil {
			return err
		}

		spectra := make(map[string]series.Series, len(job.Components))
		for _, jc := range job.Components {
			spectrum, err := loadSpectrum(ctx, st, jc.ID, series.Emission)
			if err != nil {
				return err
			}

			spectra[jc.ID] = spectrum
		}

		res, err := transfer.Fit(composite, components, spectra, transfer.Config{
			Wavelengths:     job.Wavelengths,
			PinLastTransfer: job.PinLast,
			Tolerance:       job.Tolerance,
			MaxIterations:   job.MaxIterations,
		})
		if err != nil {
			return err
		}

		if err := printYields(cmd, job, res.Yields, res.TotalQY); err != nil {
			return err
		}

		return printFitDiagnostics(cmd, res.Stats, res.Iterations, res.Converged)
	})
}

func newForsterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forster",
		Short: "Förster overlap integral, R0, efficiency, and rate",
		Args:  cobra.NoArgs,
		RunE:  runForsterCmd,
	}
	cmd.Flags().StringVar(&forsterDonor, "donor", "", "donor compound id (emission spectrum)")
	cmd.Flags().StringVar(&forsterAcceptor, "acceptor", "", "acceptor compound id (absorption spectrum)")
	cmd.Flags().Float64Var(&forsterLow, "low", 0, "window lower bound in nm")
	cmd.Flags().Float64Var(&forsterHigh, "high", 0, "window upper bound in nm")
	cmd.Flags().Float64Var(&forsterOrientation, "orientation", 2.0/3, "orientation factor kappa squared")
	cmd.Flags().Float64Var(&forsterDonorQY, "donor-qy", -1, "donor quantum yield (default: catalog value)")
	cmd.Flags().Float64Var(&forsterRefraction, "refractive-index", 0, "solvent refractive index")
	cmd.Flags().Float64Var(&forsterLifetime, "donor-lifetime", 0, "donor lifetime in ns")
	cmd.Flags().Float64Var(&forsterDistance, "distance", 0, "donor-acceptor distance in A")
	cmd.Flags().Float64Var(&forsterAnchorNM, "anchor-wavelength", 0, "acceptor epsilon anchor in nm (default: catalog value)")
	cmd.Flags().Float64Var(&forsterAnchorEps, "anchor-epsilon", 0, "acceptor epsilon at the anchor (default: catalog value)")

	return cmd
}

func runForsterCmd(cmd *cobra.Command, _ []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		donor, err := loadSpectrum(ctx, st, forsterDonor, series.Emission)
		if err != nil {
			return err
		}

		acceptor, err := loadSpectrum(ctx, st, forsterAcceptor, series.Absorption)
		if err != nil {
			return err
		}

		if forsterAnchorNM <= 0 || forsterAnchorEps <= 0 {
			c, err := st.Compound(ctx, forsterAcceptor)
			if err != nil {
				return fmt.Errorf("failed to load acceptor %s: %w", forsterAcceptor, err)
			}

			if forsterAnchorNM <= 0 {
				forsterAnchorNM = c.EpsilonWavelength
			}

			if forsterAnchorEps <= 0 {
				forsterAnchorEps = c.Epsilon
			}
		}

		if forsterDonorQY < 0 {
			c, err := st.Compound(ctx, forsterDonor)
			if err != nil {
				return fmt.Errorf("failed to load donor %s: %w", forsterDonor, err)
			}

			forsterDonorQY = c.QuantumYield
		}

		res, err := forster.Analyze(donor, acceptor, forster.Config{
			Window:            series.Window{Low: forsterLow, High: forsterHigh},
			Orientation:       forsterOrientation,
			DonorQuantumYield: forsterDonorQY,
			RefractiveIndex:   forsterRefraction,
			DonorLifetime:     forsterLifetime,
			Distance:          forsterDistance,
			AnchorWavelength:  forsterAnchorNM,
			AnchorEpsilon:     forsterAnchorEps,
		})
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(),
			"overlap integral %.6g\nR0 %.4g A\nefficiency %.4g %%\nrate %.6g 1/s\n",
			res.OverlapIntegral, res.R0, res.Efficiency, res.RateConstant)

		return err
	})
}

func newLifetimeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lifetime",
		Short: "Strickler-Berg radiative rate and lifetimes",
		Args:  cobra.NoArgs,
		RunE:  runLifetimeCmd,
	}
	cmd.Flags().StringVar(&lifetimeID, "id", "", "compound id")
	cmd.Flags().Float64Var(&lifetimeLow, "low", 0, "window lower bound in nm")
	cmd.Flags().Float64Var(&lifetimeHigh, "high", 0, "window upper bound in nm")
	cmd.Flags().Float64Var(&lifetimeRefraction, "refractive-index", 0, "solvent refractive index")
	cmd.Flags().Float64Var(&lifetimeQY, "quantum-yield", -1, "fluorescence quantum yield (default: catalog value)")
	cmd.Flags().Float64Var(&lifetimeAnchorNM, "anchor-wavelength", 0, "epsilon anchor in nm (default: catalog value)")
	cmd.Flags().Float64Var(&lifetimeAnchorEps, "anchor-epsilon", 0, "epsilon at the anchor (default: catalog value)")

	return cmd
}

func runLifetimeCmd(cmd *cobra.Command, _ []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		absorption, err := loadSpectrum(ctx, st, lifetimeID, series.Absorption)
		if err != nil {
			return err
		}

		emission, err := loadSpectrum(ctx, st, lifetimeID, series.Emission)
		if err != nil {
			return err
		}

		if lifetimeAnchorNM <= 0 || lifetimeAnchorEps <= 0 || lifetimeQY < 0 {
			c, err := st.Compound(ctx, lifetimeID)
			if err != nil {
				return fmt.Errorf("failed to load compound %s: %w", lifetimeID, err)
			}

			if lifetimeAnchorNM <= 0 {
				lifetimeAnchorNM = c.EpsilonWavelength
			}

			if lifetimeAnchorEps <= 0 {
				lifetimeAnchorEps = c.Epsilon
			}

			if lifetimeQY < 0 {
				lifetimeQY = c.QuantumYield
			}
		}

		res, err := lifetime.Analyze(absorption, emission, lifetime.Config{
			Window:                   series.Window{Low: lifetimeLow, High: lifetimeHigh},
			RefractiveIndex:          lifetimeRefraction,
			FluorescenceQuantumYield: lifetimeQY,
			AnchorWavelength:         lifetimeAnchorNM,
			AnchorEpsilon:            lifetimeAnchorEps,
		})
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(),
			"radiative rate %.6g 1/s\nnatural lifetime %.6g ns\nlifetime %.6g ns\n",
			res.RadiativeRate, res.NaturalLifetime, res.Lifetime)

		return err
	})
}

func newDipoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dipole",
		Short: "Oscillator strength and transition dipole moment",
		Args:  cobra.NoArgs,
		RunE:  runDipoleCmd,
	}
	cmd.Flags().StringVar(&dipoleID, "id", "", "compound id")
	cmd.Flags().Float64Var(&dipoleLow, "low", 0, "window lower bound in nm")
	cmd.Flags().Float64Var(&dipoleHigh, "high", 0, "window upper bound in nm")
	cmd.Flags().Float64Var(&dipoleAnchorNM, "anchor-wavelength", 0, "epsilon anchor in nm (default: catalog value)")
	cmd.Flags().Float64Var(&dipoleAnchorEps, "anchor-epsilon", 0, "epsilon at the anchor (default: catalog value)")

	return cmd
}

func runDipoleCmd(cmd *cobra.Command, _ []string) error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		absorption, err := loadSpectrum(ctx, st, dipoleID, series.Absorption)
		if err != nil {
			return err
		}

		if dipoleAnchorNM <= 0 || dipoleAnchorEps <= 0 {
			c, err := st.Compound(ctx, dipoleID)
			if err != nil {
				return fmt.Errorf("failed to load compound %s: %w", dipoleID, err)
			}

			if dipoleAnchorNM <= 0 {
				dipoleAnchorNM = c.EpsilonWavelength
			}

			if dipoleAnchorEps <= 0 {
				dipoleAnchorEps = c.Epsilon
			}
		}

		res, err := dipole.Analyze(absorption, dipole.Config{
			Window:           series.Window{Low: dipoleLow, High: dipoleHigh},
			AnchorWavelength: dipoleAnchorNM,
			AnchorEpsilon:    dipoleAnchorEps,
		})
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(),
			"peak %.6g nm\nhalf max %.6g to %.6g nm\nhalf width %.6g 1/cm\npeak epsilon %.6g\noscillator strength %.6g\ndipole moment %.6g D (%.6g C m)\n",
			res.PeakWavelength, res.HalfMaxLow, res.HalfMaxHigh, res.HalfWidth,
			res.PeakEpsilon, res.OscillatorStrength, res.DipoleMomentDebye, res.DipoleMomentSI)

		return err
	})
}

// loadSpectrum fetches a compound's spectrum of the given kind and
// rejects compounds without stored data of that kind.
func loadSpectrum(ctx context.Context, st *store.Store, id string, kind series.Kind) (series.Series, error) {
	if id == "" {
		return series.Series{}, fmt.Errorf("compound id is required")
	}

	load := st.Absorption
	if kind == series.Emission {
		load = st.Emission
	}

	s, err := load(ctx, id)
	if err != nil {
		return series.Series{}, fmt.Errorf("failed to load %s spectrum of %s: %w", kindName(kind), id, err)
	}

	if s.Len() == 0 {
		return series.Series{}, fmt.Errorf("no %s spectrum stored for %s", kindName(kind), id)
	}

	return s, nil
}

func parseKind(s string) (series.Kind, error) {
	switch s {
	case "absorption":
		return series.Absorption, nil
	case "emission", "":
		return series.Emission, nil
	}

	return series.Absorption, fmt.Errorf("unknown spectrum kind %q (want absorption or emission)", s)
}

func kindName(kind series.Kind) string {
	if kind == series.Emission {
		return "emission"
	}

	return "absorption"
}

func printYields(cmd *cobra.Command, job transferJob, yields []transfer.Yield, total float64) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "ID\tTransfer\tQY\n"); err != nil {
		return err
	}

	for i, y := range yields {
		if _, err := fmt.Fprintf(tw, "%s\t%.6g\t%.6g\n", job.Components[i].ID, y.Transfer, y.QuantumYield); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(tw, "total\t\t%.6g\n", total); err != nil {
		return err
	}

	return tw.Flush()
}

func printFitDiagnostics(cmd *cobra.Command, stats residual.Stats, iterations int, converged bool) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(),
		"\nresidual norm %.6g, r-squared %.6g, mean abs %.6g, max abs %.6g\n%d iterations, converged %v\n",
		stats.Lsq, stats.RSquared, stats.MeanAbs, stats.MaxAbs, iterations, converged)

	return err
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
