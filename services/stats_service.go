// services/stats_service.go
package services

import (
	"sort"
	"sync"

	"github.com/wfunc/wordchain/models"
)

// StatsService keeps a per-name win/loss/word tally for the process
// lifetime. Nothing is persisted: the whole point of the record is bragging
// rights within one server run.
type StatsService struct {
	mutex   sync.RWMutex
	records map[string]*models.PlayerRecord
}

func NewStatsService() *StatsService {
	return &StatsService{
		records: make(map[string]*models.PlayerRecord),
	}
}

func (s *StatsService) record(name string) *models.PlayerRecord {
	rec, exists := s.records[name]
	if !exists {
		rec = &models.PlayerRecord{Name: name}
		s.records[name] = rec
	}
	return rec
}

// RecordWord counts one accepted move for name.
func (s *StatsService) RecordWord(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.record(name).Words++
}

// RecordResult counts one finished round.
func (s *StatsService) RecordResult(winner, loser string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.record(winner).Wins++
	s.record(loser).Losses++
}

// Record returns the tally for one player name.
func (s *StatsService) Record(name string) (models.PlayerRecord, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rec, exists := s.records[name]
	if !exists {
		return models.PlayerRecord{}, false
	}
	return *rec, true
}

// All returns every record, sorted by name.
func (s *StatsService) All() []models.PlayerRecord {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]models.PlayerRecord, 0, len(s.records))
	for _, rec := range s.records {
		result = append(result, *rec)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
