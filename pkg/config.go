package evb

import (
	"encoding/json"
	"os"
)

type Configuration struct {
	ArchiveDir        string         `json:"archive_dir"`
	UnpackDir         string         `json:"unpack_dir"`
	OutputDir         string         `json:"output_dir"`
	MassFile          string         `json:"mass_file"`
	CoincidenceWindow float64        `json:"coincidence_window"`
	RunMin            int            `json:"run_min"`
	RunMax            int            `json:"run_max"`
	ChannelMap        []Board        `json:"channel_map"`
	ShiftMap          []ShiftEntry   `json:"shift_map"`
	ScalerList        []ScalerEntry  `json:"scaler_list"`
	Kinematics        KineParameters `json:"kinematics"`
	Verbosity         int            `json:"verbosity"`
	NoDB              bool           `json:"no_db"`
	Host              string         `json:"host"`
	User              string         `json:"user"`
	Passwd            string         `json:"pass"`
	DBName            string         `json:"dbname"`
}

func LoadConfiguration(filename string) (Configuration, error) {
	var config Configuration

	// Set default values
	config.MassFile = "etc/amdc_2016.txt"
	config.CoincidenceWindow = 3000.0
	config.Verbosity = 0
	config.NoDB = true
	config.Host = "localhost"
	config.User = "evbreader"
	config.Passwd = "readonly"
	config.DBName = "SPS"
	config.Kinematics = KineParameters{
		TargetZ:      6,
		TargetA:      12,
		ProjectileZ:  1,
		ProjectileA:  2,
		EjectileZ:    1,
		EjectileA:    1,
		BField:       7.9,
		SPSAngle:     37.0,
		ProjectileKE: 16.0,
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

// ProcessParams builds the event-building job parameters from the
// configuration.
func (c Configuration) ProcessParams() ProcessParams {
	return ProcessParams{
		ArchiveDir:        c.ArchiveDir,
		UnpackDir:         c.UnpackDir,
		OutputDir:         c.OutputDir,
		ChannelMap:        c.ChannelMap,
		ScalerList:        c.ScalerList,
		ShiftMap:          c.ShiftMap,
		CoincidenceWindow: c.CoincidenceWindow,
		RunMin:            c.RunMin,
		RunMax:            c.RunMax,
		MassFile:          c.MassFile,
		Kinematics:        c.Kinematics,
	}
}
