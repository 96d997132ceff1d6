package preprocessing

import "encoding/gob"

// 永続化されたプランを復元できるよう、インターフェース越しに保持される型を登録する
func init() {
	gob.Register(&SimpleImputer{})
	gob.Register(&OneHotEncoder{})
	gob.Register(&StandardScaler{})
	gob.Register(&ImputeStatistics{})
	gob.Register(&CategoryStatistics{})
	gob.Register(&ScaleStatistics{})
}
