package main

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	b "fleetxp/binary"
	"fleetxp/game/combat"
	"fleetxp/types"

	"github.com/google/uuid"
)

// Manual client: logs in, measures a ping, sends an engagement report and
// prints the XP report. Usage: go run ./test [report.json]
func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	conn, err := net.Dial("tcp", "localhost:"+port)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	welcome := read(conn)
	if w, err := b.DecodeWelcomeMessage(welcome.Data); err == nil {
		fmt.Printf("Connected: id=%d %s\n", w.ConnectionID, w.Text)
	}

	login, err := b.EncodeLoginMessage(&b.LoginRequest{Nickname: "tester"})
	if err != nil {
		panic(err)
	}
	send(conn, b.Message{Type: types.LoginMessage, Data: login})
	if reply := read(conn); reply.Error != "" {
		panic(reply.Error)
	}

	// Get current timestamp in nanoseconds
	timestamp := time.Now().UnixNano()
	send(conn, b.Message{Type: types.PingPongMessage, Data: []byte(strconv.FormatInt(timestamp, 10))})
	pong := read(conn)
	receivedNano, err := strconv.ParseInt(string(pong.Data), 10, 64)
	if err != nil {
		panic(err)
	}
	diffMs := float64(time.Now().UnixNano()-receivedNano) / float64(time.Millisecond)
	fmt.Printf("Round trip: %.3f ms\n", diffMs)

	var report []byte
	if len(os.Args) > 1 {
		report, err = os.ReadFile(os.Args[1])
	} else {
		report, err = json.Marshal(combat.NewReport(sampleEngagement()))
	}
	if err != nil {
		panic(err)
	}
	send(conn, b.Message{Type: types.EngagementResultMessage, Data: report})

	for {
		msg := read(conn)
		if msg.Type == types.EngagementResultMessage {
			if msg.Error != "" {
				fmt.Printf("Engagement failed: %s\n", msg.Error)
				break
			}
			ack, err := b.DecodeEngagementAck(msg.Data)
			if err != nil {
				panic(err)
			}
			fmt.Printf("Engagement %s done\n", ack.EngagementID)
			for _, tr := range ack.Tracked {
				fmt.Printf("  %s now tracked on loadout %s (cloned: %t)\n", tr.MemberID, tr.LoadoutID, tr.Cloned)
			}
			break
		}
		if msg.Type != types.XPReportMessage {
			continue
		}
		p, err := b.DecodeXPReport(msg.Data)
		if err != nil {
			panic(err)
		}
		fmt.Println(p.Text)
	}

	req, err := b.EncodeShipXPRequest(&b.ShipXPRequest{MemberID: "sample-carrier"})
	if err != nil {
		panic(err)
	}
	send(conn, b.Message{Type: types.ShipXPRequestMessage, Data: req})
	if reply := read(conn); reply.Error == "" {
		ship, err := b.DecodeShipXP(reply.Data)
		if err == nil {
			fmt.Printf("%s has %.1f XP\n", ship.MemberID, ship.XP)
		}
	} else {
		fmt.Printf("Ship XP request failed: %s\n", reply.Error)
	}

	send(conn, b.Message{Type: types.DisconnectMessage})
}

func send(conn net.Conn, msg b.Message) {
	if err := b.WriteFrame(conn, msg); err != nil {
		panic(err)
	}
}

func read(conn net.Conn) *b.Message {
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	msg, err := b.ReadFrame(conn)
	if err != nil {
		panic(err)
	}
	return msg
}

// sampleEngagement is a carrier whose fighter wing finishes off a frigate.
func sampleEngagement() *combat.EngagementResult {
	carrier := &combat.Member{
		ID:               "sample-carrier",
		ShipName:         "ISS Patience",
		Loadout:          combat.NewLoadout("heron", "Heron", types.HullSizeCruiser, 5000),
		DeploymentCost:   120,
		DeploymentPoints: 20,
	}
	wing := &combat.Member{
		ID:       "sample-wing",
		ShipName: "Broadsword Wing",
		Loadout:  combat.NewLoadout("broadsword", "Broadsword", types.HullSizeFighter, 300),
	}
	frigate := &combat.Member{
		ID:               "sample-frigate",
		ShipName:         "Rusty Nail",
		Loadout:          combat.NewLoadout("lasher", "Lasher", types.HullSizeFrigate, 2000),
		DeploymentCost:   60,
		DeploymentPoints: 5,
	}

	damage := combat.NewDamageData()
	damage.Record(wing, frigate, 1500)
	damage.Record(carrier, frigate, 500)

	return &combat.EngagementResult{
		ID:        uuid.New(),
		PlayerWon: true,
		Winner: &combat.FleetResult{AllEverDeployed: []*combat.DeployedMember{
			{Member: carrier, Outcome: types.OutcomeDeployed},
			{Member: wing, FighterWing: true, SourceShip: carrier, Outcome: types.OutcomeDeployed},
		}},
		Loser: &combat.FleetResult{AllEverDeployed: []*combat.DeployedMember{
			{Member: frigate, Outcome: types.OutcomeDestroyed},
		}},
		Damage:      damage,
		PlayerFleet: []*combat.Member{carrier},
	}
}
