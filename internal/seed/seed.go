// Package seed generates a deterministic demo corpus: a few hundred base
// complaints plus planted duplicate sets, so a fresh database has something
// for the dedupe engine to find.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"

	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/normalize"
	"grievancedesk/backend/internal/storage"
)

const (
	baseRecords = 600
	dupSets     = 100
	randSeed    = 42
)

var (
	names   = []string{"Rahul", "Priya", "Anil", "Sunita", "Vikram", "Aisha", "Rohit", "Neha"}
	domains = []string{"mail.com", "example.com", "inbox.in", "gov.in"}
	texts   = []string{
		"I was duped by a caller asking OTP for KYC.",
		"UPI transfer went to wrong account after a fraud link.",
		"Job scam demanded registration fee, then blocked me.",
		"Call from bank, asked CVV, card charged without consent.",
		"Phishing sms with link, my account debited.",
	}
)

// Run populates an empty database. It is a no-op when complaints already
// exist, so it is safe to call on every startup.
func Run(s storage.Storage, region string) error {
	n, err := s.CountComplaints()
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("Seed skipped: %d complaints already present", n)
		return nil
	}

	rnd := rand.New(rand.NewSource(randSeed))

	var ids []uint
	byID := make(map[uint]*models.ComplaintRecord)
	for i := 0; i < baseRecords; i++ {
		name := fmt.Sprintf("%s %d", names[rnd.Intn(len(names))], 1+rnd.Intn(99))
		email := fmt.Sprintf("%s%d@%s", firstToken(name), 1+rnd.Intn(999), domains[rnd.Intn(len(domains))])
		phone := fmt.Sprintf("+91 98%08d", 10000000+rnd.Intn(5000))
		ts := fmt.Sprintf("2025-09-%02dT%02d:%02d:00", 1+rnd.Intn(28), rnd.Intn(24), rnd.Intn(60))
		text := texts[rnd.Intn(len(texts))]
		ext := fmt.Sprintf("EXT-%d", i)

		rec := &models.ComplaintRecord{
			ExternalID: &ext,
			Name:       &name,
			Phone:      normalize.Phone(phone, region),
			Email:      normalize.Email(email),
			Timestamp:  normalize.Timestamp(ts),
			Text:       normalize.Text(text),
		}
		if err := s.IngestComplaint(rec, "seed"); err != nil {
			return err
		}
		ids = append(ids, rec.ID)
		byID[rec.ID] = rec
	}

	for k := 0; k < dupSets; k++ {
		base := byID[ids[rnd.Intn(len(ids))]]
		for c := 0; c < 1+rnd.Intn(2); c++ {
			ext := fmt.Sprintf("DUP-%d-%d", k, 1000+rnd.Intn(9000))
			dup := &models.ComplaintRecord{
				ExternalID: &ext,
				Name:       base.Name,
				Phone:      base.Phone,
				Timestamp:  base.Timestamp,
				Text:       base.Text,
			}
			if rnd.Float64() < 0.7 {
				dup.Email = base.Email
			}
			if err := s.IngestComplaint(dup, "seed"); err != nil {
				return err
			}
		}
	}

	log.Printf("Seed complete: %d base complaints, %d duplicate sets", baseRecords, dupSets)
	return nil
}

func firstToken(name string) string {
	first, _, _ := strings.Cut(name, " ")
	return strings.ToLower(first)
}
