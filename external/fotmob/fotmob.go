package fotmob

type suggestEnvelope struct {
	Teams []suggestTeam `json:"teams"`
}

type suggestTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type teamEnvelope struct {
	Fixtures teamFixturesTab `json:"fixtures"`
}

type teamFixturesTab struct {
	AllFixtures allFixtures `json:"allFixtures"`
}

type allFixtures struct {
	Fixtures []teamFixture `json:"fixtures"`
}

type teamFixture struct {
	ID         int64         `json:"id"`
	Home       fixtureSide   `json:"home"`
	Away       fixtureSide   `json:"away"`
	Status     fixtureStatus `json:"status"`
	Tournament tournament    `json:"tournament"`
}

type fixtureSide struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Score *int   `json:"score"` // null until kickoff
}

type fixtureStatus struct {
	UTCTime   string `json:"utcTime"`
	Started   bool   `json:"started"`
	Finished  bool   `json:"finished"`
	Cancelled bool   `json:"cancelled"`
	ScoreStr  string `json:"scoreStr"`
}

type tournament struct {
	Name string `json:"name"`
}
