package pb

// LeaseState mirrors the bot-session lease lifecycle (spec §3/§4.7).
type LeaseState int32

const (
	LeaseStateUnspecified LeaseState = iota
	LeaseStatePending
	LeaseStateActive
	LeaseStateCompleted
	LeaseStateCancelled
)

func (s LeaseState) String() string {
	switch s {
	case LeaseStatePending:
		return "PENDING"
	case LeaseStateActive:
		return "ACTIVE"
	case LeaseStateCompleted:
		return "COMPLETED"
	case LeaseStateCancelled:
		return "CANCELLED"
	default:
		return "LEASE_STATE_UNSPECIFIED"
	}
}

// Lease is a unit of work assigned to a bot: a job's Action digest plus
// lifecycle state and (on completion) its result, packed as raw bytes
// since the upstream schema types these payload/result fields as Any.
type Lease struct {
	ID          string     `json:"id"`
	Payload     []byte     `json:"payload,omitempty"`
	State       LeaseState `json:"state"`
	Status      *Status    `json:"status,omitempty"`
	Result      []byte     `json:"result,omitempty"`
	Requirements *Platform `json:"requirements,omitempty"`
}

// BotStatus mirrors the upstream BotStatus enum.
type BotStatus int32

const (
	BotStatusUnspecified BotStatus = iota
	BotStatusOK
	BotStatusUnhealthy
	BotStatusHostReboot
	BotStatusBotTerminating
)

func (s BotStatus) String() string {
	switch s {
	case BotStatusOK:
		return "OK"
	case BotStatusUnhealthy:
		return "UNHEALTHY"
	case BotStatusHostReboot:
		return "HOST_REBOOTING"
	case BotStatusBotTerminating:
		return "BOT_TERMINATING"
	default:
		return "BOT_STATUS_UNSPECIFIED"
	}
}

// Worker describes the device/platform hosting a bot.
type Worker struct {
	Properties []Property `json:"properties,omitempty"`
	Devices    []Property `json:"devices,omitempty"`
}

// BotSession is the unit of long-poll communication between a bot and the
// scheduler: the bot reports its status and in-progress leases, and
// receives newly-assigned leases in the same response (spec §4.7).
type BotSession struct {
	Name   string    `json:"name,omitempty"`
	Bot    Worker    `json:"bot_id"`
	Status BotStatus `json:"status"`
	Leases []*Lease  `json:"leases,omitempty"`
	Expire string    `json:"expire_time,omitempty"`
	// Slots is the number of leases this bot can run concurrently. The
	// upstream schema has no direct equivalent (one BotSession historically
	// ran a single lease); BuildGrid servers inferred capacity from worker
	// config instead. Exposing it on the session keeps bots.Instance's
	// capacity check (spec §4.8) self-contained in the wire message.
	Slots int `json:"slots,omitempty"`
}

type CreateBotSessionRequest struct {
	Parent     string     `json:"parent,omitempty"`
	BotSession BotSession `json:"bot_session"`
}

type UpdateBotSessionRequest struct {
	Name       string     `json:"name"`
	BotSession BotSession `json:"bot_session"`
	UpdateMask string     `json:"update_mask,omitempty"`
}
