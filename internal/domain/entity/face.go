package entity

import "image"

// FaceRegion представляет область лица, найденную локализатором
type FaceRegion struct {
	Box        image.Rectangle   // прямоугольник лица в пикселях исходного изображения
	Confidence float64           // уверенность локализатора, 0..1
	Eyes       []image.Rectangle // найденные глаза в координатах изображения
}

// Center возвращает координаты центра лица
func (f FaceRegion) Center() (x, y int) {
	return f.Box.Min.X + f.Box.Dx()/2, f.Box.Min.Y + f.Box.Dy()/2
}

// Area возвращает площадь области в пикселях
func (f FaceRegion) Area() int {
	return f.Box.Dx() * f.Box.Dy()
}
