package domain

import "sort"

// Stage is one step of the eyeglasses service pipeline, stored verbatim in ServiceOrders.Status.
type Stage string

const (
	StageAwaitingPickup   Stage = "Aguardando Coleta"
	StageFrameInTransit   Stage = "Armação em Trânsito (Ida)"
	StageTriage           Stage = "Triagem / Conferência"
	StageAssembly         Stage = "Em Montagem"
	StageQualityControl   Stage = "Controle de Qualidade"
	StageLabFinished      Stage = "Laboratório Finalizado"
	StageInTransitToStore Stage = "Em Trânsito para Loja"
	StageReadyForPickup   Stage = "Disponível para Retirada"
	StageDelivered        Stage = "Entregue"
)

const (
	FirstStage    = StageAwaitingPickup
	TerminalStage = StageDelivered
)

var stages = []Stage{
	StageAwaitingPickup,
	StageFrameInTransit,
	StageTriage,
	StageAssembly,
	StageQualityControl,
	StageLabFinished,
	StageInTransitToStore,
	StageReadyForPickup,
	StageDelivered,
}

// legacyStages maps labels written by earlier versions of the store system.
var legacyStages = map[string]Stage{
	"Coleta da armação solicitada":                              StageAwaitingPickup,
	"Armação coletada na loja e encaminhada para o laboratório": StageFrameInTransit,
	"Analise dos dados e medidas da lente e armação":            StageTriage,
	"Montagem":                        StageAssembly,
	"Testes de lente":                 StageQualityControl,
	"Montagem finalizada":             StageLabFinished,
	"Solicitada entrega na loja":      StageInTransitToStore,
	"Óculos disponível para retirada": StageReadyForPickup,
	"Óculos entregue":                 StageDelivered,
}

var stageIndex = func() map[Stage]int {
	idx := make(map[Stage]int, len(stages))
	for i, s := range stages {
		idx[s] = i
	}
	return idx
}()

// Stages returns the ordered vocabulary. The returned slice is a copy.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

// NormalizeStatus maps any stored status to a current stage.
// Legacy labels are translated, current labels pass through and anything else
// falls back to FirstStage.
func NormalizeStatus(raw string) Stage {
	if s, ok := legacyStages[raw]; ok {
		return s
	}
	if _, ok := stageIndex[Stage(raw)]; ok {
		return Stage(raw)
	}
	return FirstStage
}

// ParseStage accepts only a current stage label.
func ParseStage(raw string) (Stage, bool) {
	if _, ok := stageIndex[Stage(raw)]; ok {
		return Stage(raw), true
	}
	return "", false
}

// Index is the zero-based position of s in the vocabulary, or -1.
func (s Stage) Index() int {
	if i, ok := stageIndex[s]; ok {
		return i
	}
	return -1
}

// StoredLabels lists every Status value that normalizes to s: the current
// label first, then its legacy labels in sorted order.
func (s Stage) StoredLabels() []string {
	var legacy []string
	for label, stage := range legacyStages {
		if stage == s {
			legacy = append(legacy, label)
		}
	}
	sort.Strings(legacy)
	return append([]string{string(s)}, legacy...)
}

func (s Stage) IsTerminal() bool {
	return s == TerminalStage
}

func (s Stage) String() string {
	return string(s)
}
