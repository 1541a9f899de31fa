package evb

import (
	"container/heap"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Maximum allowed in-memory size for a single dataframe: 8 GB. Crossing it
// flushes the accumulated rows as a numbered fragment.
const maxUsedSize = 8_000_000_000

// Fraction of the total expected record count between progress updates.
const progressStep = 0.01

// ProcessParams describe a whole event-building job: where the run archives
// live, where to unpack and write, and the maps and kinematics shared by
// every run in the range.
type ProcessParams struct {
	ArchiveDir        string
	UnpackDir         string
	OutputDir         string
	ChannelMap        []Board
	ScalerList        []ScalerEntry
	ShiftMap          []ShiftEntry
	CoincidenceWindow float64 // ns
	RunMin            int
	RunMax            int
	MassFile          string
	Kinematics        KineParameters
	// Size in bytes the in-memory table may grow to before being flushed
	// as a fragment. Zero means the 8 GB default.
	MaxBufferSize int
}

type runParams struct {
	archivePath   string
	unpackDir     string
	outputPath    string
	scalers       []ScalerEntry
	scalerOutPath string
	channelMap    *ChannelMap
	shiftMap      *ShiftMap
	window        float64
	maxBuffer     int
	runNumber     int
}

// mergeEntry is one open file in the k-way merge. The index is the file's
// encounter order, used as the deterministic tie-break for equal timestamps.
type mergeEntry struct {
	file  *CompassFile
	index int
}

// fileHeap is a binary min-heap over the open files, keyed by the timestamp
// of each file's current hit.
type fileHeap []mergeEntry

func (h fileHeap) Len() int { return len(h) }

func (h fileHeap) Less(i, j int) bool {
	hi, _ := h[i].file.PeekHit()
	hj, _ := h[j].file.PeekHit()
	if hi.Timestamp != hj.Timestamp {
		return hi.Timestamp < hj.Timestamp
	}
	return h[i].index < h[j].index
}

func (h fileHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *fileHeap) Push(x any) { *h = append(*h, x.(mergeEntry)) }

func (h *fileHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

// mergeHits drives the k-way merge across the open files, handing hits to fn
// in globally non-decreasing timestamp order. Each step pops the file whose
// current hit is earliest, feeds it and advances that file's cursor.
func mergeHits(files []*CompassFile, fn func(Hit) error) error {
	h := make(fileHeap, 0, len(files))
	for i, file := range files {
		if !file.IsEOF() {
			h = append(h, mergeEntry{file: file, index: i})
		}
	}
	heap.Init(&h)

	for h.Len() > 0 {
		entry := h[0]
		hit, _ := entry.file.PeekHit()
		if err := fn(hit); err != nil {
			return err
		}
		if err := entry.file.Advance(); err != nil {
			return err
		}
		if entry.file.IsEOF() {
			heap.Pop(&h)
		} else {
			heap.Fix(&h, 0)
		}
	}
	return nil
}

// cleanUpUnpackDir removes all regular files from the scratch directory.
func cleanUpUnpackDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// processRun builds one run end to end: unpack the archive, open every data
// file, merge the hit streams through the event builder, accumulate rows and
// flush fragments, then write the remaining table and the scaler report and
// clean the scratch directory. Any error aborts the run immediately.
func processRun(params runParams, weights *Weights, progress *Progress) error {
	// Protective, ensure no loose files from a previous run.
	if err := cleanUpUnpackDir(params.unpackDir); err != nil {
		return err
	}

	if err := UnpackRunArchive(params.archivePath, params.unpackDir); err != nil {
		return err
	}

	scalerList := NewScalerList(params.scalers)

	// Collect all unpacked files, separating scalers from list-mode data.
	var files []*CompassFile
	closeFiles := func() {
		for _, file := range files {
			file.Close()
		}
		files = nil
	}
	defer closeFiles()

	var totalCount uint64
	entries, err := os.ReadDir(params.unpackDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(params.unpackDir, entry.Name())
		if scalerList.ReadScaler(path) {
			continue
		}
		file, err := OpenCompassFile(path, params.shiftMap)
		if err != nil {
			return err
		}
		files = append(files, file)
		totalCount += file.NumHits()
	}
	logger.Info(fmt.Sprintf("run %d: merging %d files, %d hits expected",
		params.runNumber, len(files), totalCount), "run")

	builder := NewEventBuilder(params.window)
	data := NewChannelData()
	fragNumber := 0

	var count, flushCount uint64
	flushVal := uint64(float64(totalCount) * progressStep)

	err = mergeHits(files, func(hit Hit) error {
		builder.PushHit(hit)

		if builder.EventReady() {
			data.AppendEvent(builder.ReadyEvent(), params.channelMap, weights)
			// Check to see if we need to fragment.
			if data.UsedSize() > params.maxBuffer {
				if err := WriteDataFrameFragment(data, filepath.Dir(params.outputPath), params.runNumber, fragNumber); err != nil {
					return err
				}
				data = NewChannelData()
				fragNumber++
			}
		}

		count++
		if count == flushVal {
			flushCount++
			count = 0
			if progress != nil {
				progress.Set(float32(float64(flushCount) * progressStep))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if data.Overwrites() > 0 {
		logger.Info(fmt.Sprintf("run %d: %d duplicate-channel hits overwritten within events",
			params.runNumber, data.Overwrites()), "run")
	}

	if fragNumber == 0 {
		if err := WriteDataFrame(data, params.outputPath); err != nil {
			return err
		}
	} else {
		if err := WriteDataFrameFragment(data, filepath.Dir(params.outputPath), params.runNumber, fragNumber); err != nil {
			return err
		}
	}
	if scalerList.Recognized() {
		if err := scalerList.WriteReport(params.scalerOutPath); err != nil {
			return err
		}
	}

	// Release the handles before deleting the unpacked files.
	closeFiles()

	return cleanUpUnpackDir(params.unpackDir)
}

// ProcessRuns builds every run in [RunMin, RunMax) sequentially. A run whose
// archive does not exist on disk is skipped; any other failure stops the
// whole range. Progress may be nil if no observer is interested.
func ProcessRuns(params ProcessParams, progress *Progress) error {
	channelMap := NewChannelMap(params.ChannelMap)
	shiftMap := NewShiftMap(params.ShiftMap)
	maxBuffer := params.MaxBufferSize
	if maxBuffer <= 0 {
		maxBuffer = maxUsedSize
	}

	masses, err := NewMassMap(params.MassFile)
	if err != nil {
		return err
	}
	weights := CalculateWeights(&params.Kinematics, masses)
	logger.Info(fmt.Sprintf("reaction: %s", params.Kinematics.ReactionEquation(masses)), "run")
	if weights == nil {
		logger.Error("kinematic weights unavailable, Xavg will not be filled")
	}

	for run := params.RunMin; run < params.RunMax; run++ {
		local := runParams{
			archivePath:   filepath.Join(params.ArchiveDir, fmt.Sprintf("run_%d.tar.gz", run)),
			unpackDir:     params.UnpackDir,
			outputPath:    filepath.Join(params.OutputDir, fmt.Sprintf("run_%d.parquet", run)),
			scalers:       params.ScalerList,
			scalerOutPath: filepath.Join(params.OutputDir, fmt.Sprintf("run_%d_scalers.txt", run)),
			channelMap:    channelMap,
			shiftMap:      shiftMap,
			window:        params.CoincidenceWindow,
			maxBuffer:     maxBuffer,
			runNumber:     run,
		}

		if progress != nil {
			progress.Set(0.0)
		}

		// Skip over the run if its archive does not exist.
		if _, err := os.Stat(local.archivePath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return &ErrOpenFile{Filename: local.archivePath, Err: err}
		}

		if err := processRun(local, weights, progress); err != nil {
			return err
		}
	}

	return nil
}
