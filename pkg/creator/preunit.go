package creator

import "github.com/aleph-committee/aleph-poset/pkg/gomel"

type preunit struct {
	creator          uint16
	height           int
	view             *gomel.Crown
	signature        gomel.Signature
	hash             gomel.Hash
	data             []byte
	randomSourceData []byte
}

func newPreunit(creator uint16, height int, view *gomel.Crown, data, randomSourceData []byte) gomel.Preunit {
	pu := &preunit{
		creator:          creator,
		height:           height,
		view:             view,
		data:             data,
		randomSourceData: randomSourceData,
	}
	pu.hash = *gomel.ComputeHash(creator, height, view, data, randomSourceData)
	return pu
}

func (pu *preunit) Creator() uint16                 { return pu.creator }
func (pu *preunit) Height() int                     { return pu.height }
func (pu *preunit) View() *gomel.Crown               { return pu.view }
func (pu *preunit) Signature() gomel.Signature       { return pu.signature }
func (pu *preunit) Hash() *gomel.Hash                { return &pu.hash }
func (pu *preunit) Data() []byte                     { return pu.data }
func (pu *preunit) RandomSourceData() []byte         { return pu.randomSourceData }
func (pu *preunit) SetSignature(sig gomel.Signature) { pu.signature = sig }
