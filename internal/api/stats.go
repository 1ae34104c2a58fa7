package api

import "net/http"

func (a *Api) HandlerStudentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.StatsServiceConfig.StudentStats(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, stats)
}

func (a *Api) HandlerAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.StatsServiceConfig.AdminStats(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, stats)
}

func (a *Api) HandlerCreatorStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.EarningServiceConfig.GetCreatorStats(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	writeJson(w, http.StatusOK, stats)
}
