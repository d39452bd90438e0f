package normalize

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/mo"
	"github.com/tidwall/gjson"

	"crowdfund-scraper/internal/model"
)

var ErrMalformedResponse = errors.New("malformed kickstarter response")

const day = 24 * time.Hour

// Kickstarter переводит проекты из JSON API в общую схему.
// Суммы пересчитываются из USD в базовую валюту по фиксированному курсу.
type Kickstarter struct {
	usdToBase float64
	now       func() time.Time
}

func NewKickstarter(usdToBaseRate float64) *Kickstarter {
	return &Kickstarter{
		usdToBase: usdToBaseRate,
		now:       time.Now,
	}
}

// WithClock подменяет источник текущего времени (для тестов)
func (k *Kickstarter) WithClock(now func() time.Time) *Kickstarter {
	k.now = now
	return k
}

// NormalizePage разбирает ответ discover-эндпоинта: {"projects": [...]}
func (k *Kickstarter) NormalizePage(body []byte) ([]model.Record, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
	}

	projects := gjson.GetBytes(body, "projects")
	if !projects.Exists() || !projects.IsArray() {
		return nil, fmt.Errorf("%w: no projects array", ErrMalformedResponse)
	}

	var records []model.Record
	projects.ForEach(func(_, project gjson.Result) bool {
		records = append(records, k.NormalizeProject(project))
		return true
	})

	return records, nil
}

// NormalizeProject собирает запись из одного элемента projects
func (k *Kickstarter) NormalizeProject(project gjson.Result) model.Record {
	record := model.NewRecord(model.SourceKickstarter)
	record.Title = project.Get("name").String()
	record.Link = project.Get("urls.web.project").String()
	record.Summary = project.Get("blurb").String()

	// usd_pledged приходит строкой, gjson разбирает её как число
	if usd := project.Get("usd_pledged"); usd.Exists() {
		record.AmountRaised = mo.Some(usd.Float() * k.usdToBase)
	}

	pledged, goal := project.Get("pledged"), project.Get("goal")
	if pledged.Exists() && goal.Float() > 0 {
		record.Percentage = mo.Some(pledged.Float() / goal.Float() * 100)
	}

	if deadline := project.Get("deadline"); deadline.Exists() {
		// Дедлайн включительный: последний момент - за секунду до отметки
		record.DaysLeft = mo.Some(DaysLeft(time.Unix(deadline.Int()-1, 0), k.now()))
	}

	return record
}

// DaysLeft - целое число суток до дедлайна с округлением вниз:
// 10 дней 3 часа → 10, минус 1 час → -1
func DaysLeft(deadline, now time.Time) int {
	d := deadline.Sub(now)
	days := d / day
	if d < 0 && d%day != 0 {
		days--
	}
	return int(days)
}
