package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/ecosys/components"
	"github.com/pthm-cable/ecosys/config"
	"github.com/pthm-cable/ecosys/factory"
	"github.com/pthm-cable/ecosys/geom"
	"github.com/pthm-cable/ecosys/selection"
	"github.com/pthm-cable/ecosys/systems"
	"github.com/pthm-cable/ecosys/telemetry"
	"github.com/pthm-cable/ecosys/traits"
)

func init() {
	config.MustInit("")
}

const testScenario = `
cols: 4
rows: 4
width: 200
height: 200
regions:
  - row: [0, 1]
    col: [0, 3]
    spec: {type: dynamic, data: {food: 500, factor: 1}}
animals:
  - amount: 12
    spec: {type: sheep, data: {mate_strategy: {type: closest}, danger_strategy: {type: closest}}}
  - amount: 3
    spec:
      type: wolf
      data:
        hunt_strategy: {type: youngest}
        pos: {x_range: [50, 150], y_range: [50, 150]}
`

func buildScenario(t *testing.T, seed int64, opts Options) *Simulator {
	t.Helper()
	sc, err := LoadScenario(strings.NewReader(testScenario))
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}
	sim, err := sc.Build(rand.New(rand.NewSource(seed)), opts)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return sim
}

func newSim(t *testing.T, opts Options) *Simulator {
	t.Helper()
	sim, err := New(1, 1, 100, 100, rand.New(rand.NewSource(1)), opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return sim
}

func sheep(pos geom.Vector) components.Animal {
	sc := config.Cfg().Species.Sheep
	return components.Animal{
		Genome: components.Genome{Kind: traits.Sheep, Code: sc.GeneticCode, Diet: traits.Herbivore},
		Body:   components.Body{Pos: pos, Placed: true, Speed: sc.Speed, SightRange: sc.Sight},
		Vitals: components.Vitals{Energy: 100, Age: sc.InitialAge},
		Behavior: components.Behavior{
			State:        traits.Normal,
			MatePolicy:   selection.First{},
			TargetPolicy: selection.First{},
		},
	}
}

func TestNew_InvalidWorld(t *testing.T) {
	if _, err := New(1, 1, 5, 100, rand.New(rand.NewSource(1)), Options{}); !errors.Is(err, systems.ErrConfiguration) {
		t.Errorf("New = %v, want ErrConfiguration", err)
	}
}

func TestStep_InvalidStep(t *testing.T) {
	sim := newSim(t, Options{})
	for _, dt := range []float64{0, -0.5, math.NaN(), math.Inf(1)} {
		if err := sim.Step(dt); !errors.Is(err, ErrInvalidStep) {
			t.Errorf("Step(%v) = %v, want ErrInvalidStep", dt, err)
		}
	}
	if sim.Clock() != 0 || sim.Steps() != 0 {
		t.Errorf("clock = %v steps = %d after rejected steps", sim.Clock(), sim.Steps())
	}
}

func TestStep_Deterministic(t *testing.T) {
	run := func() []byte {
		sim := buildScenario(t, 42, Options{})
		for i := 0; i < 200; i++ {
			if err := sim.Step(0.03); err != nil {
				t.Fatalf("step %d: %v", i, err)
			}
			if err := sim.Verify(); err != nil {
				t.Fatalf("step %d: Verify failed: %v", i, err)
			}
		}
		data, err := json.Marshal(sim.Snapshot())
		if err != nil {
			t.Fatalf("encoding snapshot: %v", err)
		}
		return data
	}

	a, b := run(), run()
	if !bytes.Equal(a, b) {
		t.Error("two runs with the same seed produced different snapshots")
	}
}

func TestStep_DeadLeaveOnNextStep(t *testing.T) {
	sim := newSim(t, Options{})
	starved := sheep(geom.V(50, 50))
	starved.Vitals.Energy = 0
	if _, err := sim.AddAnimal(starved); err != nil {
		t.Fatal(err)
	}
	if _, err := sim.AddAnimal(sheep(geom.V(20, 20))); err != nil {
		t.Fatal(err)
	}

	if err := sim.Step(0.03); err != nil {
		t.Fatal(err)
	}
	animals := sim.Snapshot().State.Regions[0].Animals
	if len(animals) != 2 || animals[0].State != traits.Dead {
		t.Fatalf("after the fatal step: %+v, want the dead sheep still listed", animals)
	}

	if err := sim.Step(0.03); err != nil {
		t.Fatal(err)
	}
	animals = sim.Snapshot().State.Regions[0].Animals
	if len(animals) != 1 || animals[0].ID != 2 {
		t.Fatalf("after pruning: %+v, want only animal 2", animals)
	}
	if len(sim.Animals()) != 1 {
		t.Errorf("live list holds %d animals, want 1", len(sim.Animals()))
	}
	if err := sim.Verify(); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
}

func TestStep_DeliversOffspring(t *testing.T) {
	sim := newSim(t, Options{})
	mother, err := sim.AddAnimal(sheep(geom.V(50, 50)))
	if err != nil {
		t.Fatal(err)
	}
	child := sheep(geom.V(10, 90))
	sim.store.Behavior(mother).Pregnancy = &child

	if err := sim.Step(0.03); err != nil {
		t.Fatal(err)
	}
	if sim.store.Behavior(mother).Pregnant() {
		t.Error("pregnancy should be cleared once delivered")
	}
	animals := sim.Animals()
	if len(animals) != 2 {
		t.Fatalf("live animals = %d, want 2", len(animals))
	}
	born := animals[1]
	if born.ID != 2 || born.Pos != geom.V(10, 90) {
		t.Errorf("newborn = %+v, want ID 2 at [10,90]", born)
	}
	if born.Age != child.Vitals.Age {
		t.Errorf("newborn aged to %v in its birth step", born.Age)
	}
}

type recorder struct {
	NopObserver
	calls   []string
	animals int
	time    float64
	dt      float64
	region  systems.RegionInfo
}

func (r *recorder) OnRegister(time float64, _ MapInfo, animals []AnimalInfo) {
	r.calls = append(r.calls, "register")
	r.animals = len(animals)
}

func (r *recorder) OnReset(time float64, _ MapInfo, animals []AnimalInfo) {
	r.calls = append(r.calls, "reset")
	r.animals = len(animals)
	r.time = time
}

func (r *recorder) OnAnimalAdded(_ float64, _ MapInfo, animals []AnimalInfo, _ AnimalInfo) {
	r.calls = append(r.calls, "added")
	r.animals = len(animals)
}

func (r *recorder) OnRegionSet(_, _ int, _ MapInfo, info systems.RegionInfo) {
	r.calls = append(r.calls, "region")
	r.region = info
}

func (r *recorder) OnAdvanced(time float64, _ MapInfo, animals []AnimalInfo, dt float64) {
	r.calls = append(r.calls, "advanced")
	r.time, r.dt, r.animals = time, dt, len(animals)
}

func TestObservers(t *testing.T) {
	rec := &recorder{}
	sim := newSim(t, Options{Observers: []Observer{rec}})
	sim.Subscribe(rec)

	if _, err := sim.AddAnimal(sheep(geom.V(1, 1))); err != nil {
		t.Fatal(err)
	}
	dyn, err := systems.NewDynamicRegion(10, 1, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if sim.SetRegion(3, 0, dyn) {
		t.Error("out-of-range SetRegion reported success")
	}
	if !sim.SetRegion(0, 0, dyn) {
		t.Error("SetRegion(0,0) failed")
	}
	if err := sim.Step(0.5); err != nil {
		t.Fatal(err)
	}
	if rec.time != 0.5 || rec.dt != 0.5 || rec.animals != 1 {
		t.Errorf("OnAdvanced got time=%v dt=%v animals=%d", rec.time, rec.dt, rec.animals)
	}
	if err := sim.Reset(2, 2, 50, 50); err != nil {
		t.Fatal(err)
	}
	if rec.time != 0 || rec.animals != 0 {
		t.Errorf("OnReset got time=%v animals=%d", rec.time, rec.animals)
	}

	sim.Unsubscribe(rec)
	if err := sim.Step(0.5); err != nil {
		t.Fatal(err)
	}

	want := []string{"register", "added", "region", "advanced", "reset"}
	if strings.Join(rec.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
	if rec.region.Type != systems.DynamicRegionType || rec.region.Herbivores != 1 {
		t.Errorf("OnRegionSet info = %+v", rec.region)
	}
}

func TestAddAnimal_IDsKeepCountingAfterReset(t *testing.T) {
	sim := newSim(t, Options{})
	for i := 0; i < 2; i++ {
		if _, err := sim.AddAnimal(sheep(geom.V(5, 5))); err != nil {
			t.Fatal(err)
		}
	}
	if err := sim.Reset(1, 1, 100, 100); err != nil {
		t.Fatal(err)
	}
	if _, err := sim.AddAnimal(sheep(geom.V(5, 5))); err != nil {
		t.Fatal(err)
	}
	if got := sim.Animals(); len(got) != 1 || got[0].ID != 3 {
		t.Errorf("animals after reset = %+v, want one with ID 3", got)
	}
}

func TestScenario(t *testing.T) {
	sim := buildScenario(t, 1, Options{})

	dynamic := 0
	for d := range sim.MapInfo().Regions() {
		if d.Info.Type == systems.DynamicRegionType {
			dynamic++
			if d.Row > 1 {
				t.Errorf("dynamic region at row %d", d.Row)
			}
		}
	}
	if dynamic != 8 {
		t.Errorf("dynamic regions = %d, want 8", dynamic)
	}

	var herbivores, carnivores int
	for _, a := range sim.Animals() {
		switch a.Diet {
		case traits.Herbivore:
			herbivores++
		case traits.Carnivore:
			carnivores++
			if a.Pos.X < 50 || a.Pos.X > 150 || a.Pos.Y < 50 || a.Pos.Y > 150 {
				t.Errorf("wolf at %v outside its pos range", a.Pos)
			}
		}
	}
	if herbivores != 12 || carnivores != 3 {
		t.Errorf("herbivores/carnivores = %d/%d, want 12/3", herbivores, carnivores)
	}
}

func TestScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"short range", `{regions: [{row: [0], col: [0, 1], spec: {type: default}}]}`, ErrScenario},
		{"negative amount", `{animals: [{amount: -1, spec: {type: sheep}}]}`, ErrScenario},
		{"unknown region", `{regions: [{row: [0, 0], col: [0, 0], spec: {type: desert}}]}`, factory.ErrUnrecognizedType},
		{"unknown animal", `{animals: [{amount: 1, spec: {type: lion}}]}`, factory.ErrUnrecognizedType},
		{"bad payload", `{animals: [{amount: 1, spec: {type: sheep, data: {pos: 3}}}]}`, factory.ErrMalformedDescription},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := LoadScenario(strings.NewReader(tt.src))
			if err == nil {
				_, err = sc.Build(rand.New(rand.NewSource(1)), Options{})
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadScenario_DefaultDimensions(t *testing.T) {
	sc, err := LoadScenario(strings.NewReader(`animals: []`))
	if err != nil {
		t.Fatal(err)
	}
	w := config.Cfg().World
	if sc.Cols != w.Cols || sc.Rows != w.Rows || sc.Width != w.Width || sc.Height != w.Height {
		t.Errorf("dims = %dx%d %dx%d, want the config world", sc.Cols, sc.Rows, sc.Width, sc.Height)
	}
}

func TestSnapshot_Encoding(t *testing.T) {
	sim, err := New(2, 1, 100, 100, rand.New(rand.NewSource(1)), Options{})
	if err != nil {
		t.Fatal(err)
	}
	dyn, err := systems.NewDynamicRegion(7, 1, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	sim.SetRegion(0, 1, dyn)
	if _, err := sim.AddAnimal(sheep(geom.V(75, 10))); err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(sim.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"time":0,"state":{"regions":[` +
		`{"row":0,"col":0,"type":"default","herbivores":0,"carnivores":0,"animals":[]},` +
		`{"row":0,"col":1,"type":"dynamic","herbivores":1,"carnivores":0,"food":7,"animals":[` +
		`{"id":1,"pos":[75,10],"gcode":"Sheep","diet":"HERBIVORE","state":"NORMAL"}]}]}}`
	if string(data) != want {
		t.Errorf("snapshot =\n%s\nwant\n%s", data, want)
	}
}

func TestTelemetry(t *testing.T) {
	dir := t.TempDir()
	var windows []telemetry.WindowStats
	tel, err := NewTelemetry(TelemetryOptions{
		RunID:         "test",
		Seed:          42,
		StatsWindow:   0.3,
		OutputDir:     dir,
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	if err != nil {
		t.Fatalf("NewTelemetry failed: %v", err)
	}

	sim := buildScenario(t, 42, Options{Telemetry: tel})
	if err := sim.Run(1.5, 0.03); err != nil {
		t.Fatal(err)
	}
	if err := tel.Close(); err != nil {
		t.Fatal(err)
	}

	if len(windows) < 4 {
		t.Fatalf("flushed %d windows, want at least 4", len(windows))
	}
	if w := windows[0]; w.Herbivores+w.Carnivores == 0 || w.Herbivores > 12 || w.Carnivores > 3 {
		t.Errorf("first window population %d/%d", w.Herbivores, w.Carnivores)
	}
	for _, name := range []string{"telemetry.csv", "perf.csv", "deaths.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}

	snap, err := sim.TelemetrySnapshot(nil)
	if err != nil {
		t.Fatal(err)
	}
	if snap.RunID != "test" || snap.RNGSeed != 42 || snap.Tick != sim.Steps() {
		t.Errorf("snapshot metadata = %+v", snap)
	}
	if len(snap.Lifetimes) != len(sim.Animals()) {
		t.Errorf("lifetimes = %d, want one per live animal (%d)", len(snap.Lifetimes), len(sim.Animals()))
	}
}
