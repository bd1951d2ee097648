package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ballsym/extension/internal/engine"
	"github.com/ballsym/extension/internal/handlers"
	"github.com/ballsym/extension/pkg/extension"
)

// benchPresets are the presets benchmarked, in report order
var benchPresets = []string{"standard", "dropshot", "hoops", "standard_throwback", "standard_heatseeker"}

// benchStartTime is the argument given to the for_time commands
const benchStartTime = 12

type benchResult struct {
	Preset  string
	Command string
	Runs    int
	Failed  int
	Total   time.Duration
}

func (r benchResult) Avg() time.Duration {
	if r.Runs == 0 {
		return 0
	}
	return r.Total / time.Duration(r.Runs)
}

// bench loads every preset and, for every prediction command, places a random
// ball and times the prediction call through the extension call surface.
// A non-empty plotPath also saves a latency chart there.
func bench(out io.Writer, iterations int, plotPath string) error {
	results, err := runBench(iterations, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(out, "\nTesting %s in %s\n", r.Command, r.Preset)
		fmt.Fprintf(out, "Total test time: %.4fs\n", r.Total.Seconds())
		fmt.Fprintf(out, "Avg. time of execution: %.2fms\n", float64(r.Avg().Microseconds())/1000)
		if r.Failed > 0 {
			fmt.Fprintf(out, "Failed calls: %d\n", r.Failed)
		}
	}
	if plotPath == "" {
		return nil
	}
	if err := plotBench(results, plotPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nLatency chart: %s\n", plotPath)
	return nil
}

func runBench(iterations int, rng *rand.Rand) ([]benchResult, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", iterations)
	}

	commands := make([]string, 0, len(handlers.PredictionCommands))
	for cmd := range handlers.PredictionCommands {
		commands = append(commands, cmd)
	}
	sort.Strings(commands)

	var results []benchResult
	for _, preset := range benchPresets {
		if reply := extension.Call("load_" + preset); !isOK(reply) {
			return nil, fmt.Errorf("loading %s: %s", preset, reply)
		}

		for _, cmd := range commands {
			r := benchResult{Preset: preset, Command: cmd}
			var args []string
			if handlers.PredictionCommands[cmd].ForTime {
				args = []string{strconv.Itoa(benchStartTime)}
			}

			var now float32
			for i := 0; i < iterations; i++ {
				packet, err := randomPacket(rng, now)
				if err != nil {
					return nil, err
				}
				if reply := extension.CallArgs("tick", []string{packet}); !isOK(reply) {
					return nil, fmt.Errorf("tick in %s: %s", preset, reply)
				}

				start := time.Now()
				reply := extension.CallArgs(cmd, args)
				r.Total += time.Since(start)
				r.Runs++
				if !isOK(reply) {
					r.Failed++
				}
				now += engine.SimulationDt
			}
			results = append(results, r)
		}
	}
	return results, nil
}

func isOK(reply string) bool {
	return strings.HasPrefix(reply, `["ok"`)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// randomPacket builds a tick packet with the ball somewhere inside a
// standard arena.
func randomPacket(rng *rand.Rand, now float32) (string, error) {
	vec := func(x, y, z float64) map[string]float64 {
		return map[string]float64{"x": x, "y": y, "z": z}
	}
	packet := map[string]any{
		"game_info": map[string]any{
			"seconds_elapsed": now,
			"world_gravity_z": -650,
		},
		"game_ball": map[string]any{
			"physics": map[string]any{
				"location":         vec(uniform(rng, -4000, 4000), uniform(rng, -5020, 5020), uniform(rng, 100, 1944)),
				"velocity":         vec(uniform(rng, -2000, 2000), uniform(rng, -2000, 2000), uniform(rng, -2000, 2000)),
				"angular_velocity": vec(uniform(rng, -1, 1), uniform(rng, -1, 1), uniform(rng, -1, 1)),
			},
			"collision_shape": map[string]any{
				"type":   1,
				"sphere": map[string]float64{"diameter": 182.5},
			},
		},
	}
	b, err := json.Marshal(packet)
	if err != nil {
		return "", fmt.Errorf("encoding tick packet: %w", err)
	}
	return string(b), nil
}
