package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer はスコアを計算できるモデルのインターフェース
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// LinearModel は線形モデルのインターフェース
type LinearModel interface {
	// Coef は選択された解の係数を返す
	Coef() []float64
	// Intercept は選択された解の切片を返す
	Intercept() float64
}

// Regressor は回帰モデルのインターフェースをまとめたもの
type Regressor interface {
	Fitter
	Predictor
	Scorer
	LinearModel
}
