package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// defaultGuess seeds fitted variables a component omits a guess for.
// Zero would pin the variable, so optional guesses default to midrange.
const defaultGuess = 0.5

// unmixJob describes a linear unmixing run: the measured composite, the
// candidate components, and the fit parameters.
type unmixJob struct {
	Composite     string           `toml:"composite"`
	Kind          string           `toml:"kind"`
	Wavelengths   []float64        `toml:"wavelengths"`
	Tolerance     float64          `toml:"tolerance"`
	MaxIterations int              `toml:"max-iterations"`
	Components    []unmixComponent `toml:"component"`
}

type unmixComponent struct {
	ID            string   `toml:"id"`
	Concentration float64  `toml:"concentration"`
	Guess         *float64 `toml:"guess"`
}

// transferJob describes an energy-transfer chain in donor-to-acceptor
// order. Forward runs evaluate the per-component transfer values; reverse
// runs fit them against the composite emission.
type transferJob struct {
	Composite     string              `toml:"composite"`
	Wavelengths   []float64           `toml:"wavelengths"`
	PinLast       bool                `toml:"pin-last"`
	Tolerance     float64             `toml:"tolerance"`
	MaxIterations int                 `toml:"max-iterations"`
	Components    []transferComponent `toml:"component"`
}

type transferComponent struct {
	ID           string   `toml:"id"`
	Weight       float64  `toml:"weight"`
	QuantumYield float64  `toml:"quantum-yield"`
	Guess        *float64 `toml:"guess"`
	Transfer     float64  `toml:"transfer"`
}

func loadJob(path string, job any) error {
	if path == "" {
		return fmt.Errorf("--job file is required")
	}

	if _, err := toml.DecodeFile(path, job); err != nil {
		return fmt.Errorf("failed to decode job file: %w", err)
	}

	return nil
}

func guessOrDefault(guess *float64) float64 {
	if guess == nil {
		return defaultGuess
	}

	return *guess
}
