package dtnsim

// scenario.go builds a World and routers from a parsed Settings
// registry and drives one run to completion, tying together every
// piece settings.go, world.go, events.go, and report.go define. Keys
// read here follow the dotted-namespace convention settings.go parses;
// every key is under "Scenario.*", including the single host group's
// name, population, mobility speeds, and router kind.

import (
	"fmt"

	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
)

// ScenarioResult summarizes one completed run for the CLI and for
// scenario-level tests.
type ScenarioResult struct {
	DeliveryRatio float64
	OverheadRatio float64
	MeanHopCount  float64
}

// RunScenario builds the World described by settings, runs it to
// completion, and returns a summary. The only file it writes is
// outputDir/trace.yaml, and only when the World's TraceManager has been
// enabled; no report files are written.
func RunScenario(settings *Settings, outputDir string) (*ScenarioResult, error) {
	settings.SetDefault("Scenario.updateInterval", 1.0)
	settings.SetDefault("Scenario.cellSizeMult", 2.0)
	settings.SetDefault("Scenario.duration", 3600.0)
	settings.SetDefault("Scenario.seed", "dtnsim")
	settings.SetDefault("Scenario.worldWidth", 1000.0)
	settings.SetDefault("Scenario.worldHeight", 1000.0)
	settings.SetDefault("Scenario.transmitRange", 30.0)
	settings.SetDefault("Scenario.transmitSpeed", 250000.0)
	settings.SetDefault("Scenario.bufferSize", int(10_000_000))
	settings.SetDefault("Scenario.minSpeed", 0.5)
	settings.SetDefault("Scenario.maxSpeed", 1.5)
	settings.SetDefault("Scenario.nrofHosts", 40)
	settings.SetDefault("Scenario.router", "epidemic")
	settings.SetDefault("Scenario.groupName", "default")
	settings.SetDefault("Scenario.meanInterarrival", 300.0)
	settings.SetDefault("Scenario.msgSize", int(500_000))
	settings.SetDefault("Scenario.ttlMinutes", 300.0)

	cellSize := settings.GetFloat64("Scenario.transmitRange") * settings.GetFloat64("Scenario.cellSizeMult")
	w := CreateWorld(settings.GetFloat64("Scenario.updateInterval"), cellSize, settings.GetString("Scenario.seed"))

	groupName := settings.GetString("Scenario.groupName")
	nrofHosts := settings.GetInt("Scenario.nrofHosts")
	routerKind := settings.GetString("Scenario.router")

	for i := 0; i < nrofHosts; i++ {
		name := fmt.Sprintf("%s%d", groupName, i)
		mobility := CreateCrowdMovement(
			settings.GetFloat64("Scenario.worldWidth"),
			settings.GetFloat64("Scenario.worldHeight"),
			settings.GetFloat64("Scenario.minSpeed"),
			settings.GetFloat64("Scenario.maxSpeed"),
		)
		host := CreateHost(i, name, groupName, int64(settings.GetInt("Scenario.bufferSize")), mobility, fmt.Sprintf("%s-%d", settings.GetString("Scenario.seed"), i))
		host.AddInterface(CreateInterface(i, settings.GetFloat64("Scenario.transmitRange"), settings.GetFloat64("Scenario.transmitSpeed")))
		host.Router = createRouter(routerKind)
		w.AddHost(host)
	}
	w.InitRouters()

	stats := CreateMessageStatsReport()
	w.AddListener(stats)

	evtMgr := evtm.New()
	w.Start(evtMgr)

	gen := CreateMessageEventGenerator(w, w.Hosts[0], groupName,
		settings.GetFloat64("Scenario.meanInterarrival"),
		int64(settings.GetInt("Scenario.msgSize")),
		settings.GetFloat64("Scenario.ttlMinutes"), 4)
	gen.Start(evtMgr)

	evtMgr.Run(vrtime.SecondsToTime(settings.GetFloat64("Scenario.duration")).Seconds())

	result := &ScenarioResult{
		DeliveryRatio: stats.DeliveryRatio(),
		OverheadRatio: stats.OverheadRatio(),
	}
	result.MeanHopCount, _ = stats.HopCountStats()

	if outputDir != "" {
		traceFile := outputDir + "/trace.yaml"
		w.TraceMgr.WriteToFile(traceFile)
	}

	return result, nil
}

// createRouter builds a Router for one of the recognized scenario
// router kinds.
func createRouter(kind string) Router {
	switch kind {
	case "epidemic":
		return CreateEpidemicRouter()
	case "sprayandwait":
		return CreateSprayAndWaitRouter(6, SprayAndWaitBinary)
	case "sprayandfocus":
		return CreateSprayAndFocusRouter(6)
	case "prophet":
		return CreateProphetRouter(ForwardGRTR, QueueFIFO)
	case "peoplerank":
		return CreatePeopleRankRouter()
	case "simbet":
		return CreateSimBetRouter()
	case "bubblerap":
		return CreateBubbleRapRouter(CreateKCliqueCommunity(3), CreateCentrality(SWindow, 600, 1), CreateCentrality(SWindow, 600, 1))
	default:
		panic(fmt.Sprintf("unrecognized router kind %q", kind))
	}
}
