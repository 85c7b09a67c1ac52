package usecases

import "time"

// chargeTier maps an upper amount bound (inclusive) to a flat charge, both
// in paise. This is the authoritative slab table for bill payments;
// anything above the last bound pays the terminal charge.
type chargeTier struct {
	UpToPaise   int64
	ChargePaise int64
}

var chargeTiers = []chargeTier{
	{UpToPaise: 500_00, ChargePaise: 5_00},
	{UpToPaise: 1000_00, ChargePaise: 10_00},
	{UpToPaise: 2000_00, ChargePaise: 15_00},
	{UpToPaise: 5000_00, ChargePaise: 20_00},
	{UpToPaise: 10000_00, ChargePaise: 25_00},
}

const terminalChargePaise = 30_00

// prepaidCategories are matched by substring against the category name;
// these skip the bill-fetch stage and take a direct amount.
var prepaidCategories = []string{
	"mobile prepaid",
	"dth",
	"fastag",
	"ncmc recharge",
	"prepaid meter",
}

// Prepaid fast-path amount bounds.
const (
	prepaidMinPaise = 10_00
	prepaidMaxPaise = 10000_00
)

// noBillDueKeywords classify soft "nothing to pay" vendor replies. The
// vendor sends free text, so this keyword match is the only discriminator
// available; matched case-insensitively.
var noBillDueKeywords = []string{
	"no bill",
	"no due",
	"already paid",
	"no outstanding",
}

// minimumDueLabels are the known spellings of the minimum-due entry inside
// the vendor's additional-info blocks.
var minimumDueLabels = []string{
	"minimum due",
	"min due",
	"minimum amount",
	"min amount",
	"minimum bill amount",
}

// Payment session lifetime and the delay before the post-pay status poll.
const (
	paymentSessionTTL  = 15 * time.Minute
	statusPollMaxBatch = 50
)

// Partner id prefixes per tier.
var partnerIDPrefixes = map[string]string{
	"retailer":           "RET",
	"distributor":        "DST",
	"master_distributor": "MDS",
}
