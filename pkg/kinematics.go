package evb

import (
	"fmt"
	"math"
)

const (
	speedOfLight = 2.99792458e8 // m/s
	// Converts charge (units of e) * B (kG) * rho (cm) to momentum in MeV.
	qbrho2p = speedOfLight * 1.0e-9
	// SE-SPS focal plane optics.
	spsDispersion       = 1.96 // x-position/rho
	spsMagnification    = 0.39 // in x-position
	spsDetectorWireDist = 4.28625 // distance between anode wires, cm
)

// Weights are the kinematic mixing weights for the averaged focal-plane
// position: Xavg = X1*Weights.X1 + X2*Weights.X2.
type Weights struct {
	X1 float64
	X2 float64
}

// KineParameters describe the reaction measured in a run.
type KineParameters struct {
	TargetZ      uint32  `json:"target_z"`
	TargetA      uint32  `json:"target_a"`
	ProjectileZ  uint32  `json:"projectile_z"`
	ProjectileA  uint32  `json:"projectile_a"`
	EjectileZ    uint32  `json:"ejectile_z"`
	EjectileA    uint32  `json:"ejectile_a"`
	BField       float64 `json:"b_field"`       // kG
	SPSAngle     float64 `json:"sps_angle"`     // deg
	ProjectileKE float64 `json:"projectile_ke"` // MeV
}

func (p *KineParameters) ResidualZ() uint32 {
	return p.TargetZ + p.ProjectileZ - p.EjectileZ
}

func (p *KineParameters) ResidualA() uint32 {
	return p.TargetA + p.ProjectileA - p.EjectileA
}

// ReactionEquation renders the reaction in target(projectile, ejectile)residual
// notation for logging.
func (p *KineParameters) ReactionEquation(masses *MassMap) string {
	isotope := func(z, a uint32) string {
		if data, ok := masses.Data(z, a); ok {
			return data.Isotope
		}
		return "Invalid"
	}
	return fmt.Sprintf("%s(%s,%s)%s",
		isotope(p.TargetZ, p.TargetA),
		isotope(p.ProjectileZ, p.ProjectileA),
		isotope(p.EjectileZ, p.EjectileA),
		isotope(p.ResidualZ(), p.ResidualA()))
}

// calculateZOffset returns the z-offset of the focal plane in cm, or false if
// any nucleus is missing from the mass table or the kinematics do not permit
// the reaction at this energy.
func calculateZOffset(params *KineParameters, masses *MassMap) (float64, bool) {
	target, ok := masses.Data(params.TargetZ, params.TargetA)
	if !ok {
		return 0, false
	}
	projectile, ok := masses.Data(params.ProjectileZ, params.ProjectileA)
	if !ok {
		return 0, false
	}
	ejectile, ok := masses.Data(params.EjectileZ, params.EjectileA)
	if !ok {
		return 0, false
	}
	residual, ok := masses.Data(params.ResidualZ(), params.ResidualA())
	if !ok {
		return 0, false
	}

	angleRads := params.SPSAngle * math.Pi / 180.0
	qValue := target.Mass + projectile.Mass - ejectile.Mass - residual.Mass
	term1 := math.Sqrt(projectile.Mass*ejectile.Mass*params.ProjectileKE) /
		(ejectile.Mass + residual.Mass) * math.Cos(angleRads)
	term2 := (params.ProjectileKE*(residual.Mass-projectile.Mass) + residual.Mass*qValue) /
		(ejectile.Mass + residual.Mass)

	ejectileKE := term1 + math.Sqrt(term1*term1+term2)
	if math.IsNaN(ejectileKE) {
		return 0, false
	}
	ejectileKE *= ejectileKE

	ejectileP := math.Sqrt(ejectileKE * (ejectileKE + 2.0*ejectile.Mass))
	rho := ejectileP / (float64(ejectile.Z) * params.BField * qbrho2p)
	val := math.Sqrt(projectile.Mass * ejectile.Mass * params.ProjectileKE / ejectileKE)
	k := val * math.Sin(angleRads) / (ejectile.Mass + residual.Mass - val*math.Cos(angleRads))
	return -1.0 * rho * spsDispersion * spsMagnification * k, true
}

// CalculateWeights computes the mixing weights that correct the averaged
// focal-plane position for the kinematic shift of the reaction. Returns nil
// when the weights cannot be computed; Xavg then stays unfilled.
func CalculateWeights(params *KineParameters, masses *MassMap) *Weights {
	zOffset, ok := calculateZOffset(params, masses)
	if !ok {
		return nil
	}
	w1 := 0.5 - zOffset/spsDetectorWireDist
	return &Weights{X1: w1, X2: 1.0 - w1}
}
