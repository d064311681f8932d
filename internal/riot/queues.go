package riot

const (
	QueueAny         = 0
	QueueRankedSolo  = 420
	QueueRankedFlex  = 440
	QueueNormalDraft = 400
	QueueNormalBlind = 430
	QueueARAM        = 450
)

var queueNames = map[int]string{
	QueueRankedSolo:  "Ranked Solo/Duo",
	QueueRankedFlex:  "Ranked Flex",
	QueueNormalDraft: "Normal Draft",
	QueueNormalBlind: "Normal Blind",
	QueueARAM:        "ARAM",
	490:              "Quickplay",
	900:              "URF",
	1020:             "One for All",
	1300:             "Nexus Blitz",
	1400:             "Ultimate Spellbook",
	1700:             "Arena",
}

// QueueName returns a human-readable queue name
func QueueName(queueID int) string {
	if name, ok := queueNames[queueID]; ok {
		return name
	}
	if queueID == 0 {
		return "Custom Game"
	}
	return "Other"
}
