package scaler

const baseStyles = `
@keyframes fadeIn { from { opacity: 0; } to { opacity: 1; } }
body {
  opacity: 0;
  animation: fadeIn 0.5s ease-out forwards;
  animation-delay: 0.1s;
  overflow: hidden !important;
  margin: 0 !important;
  padding: 0 !important;
  width: 100vw !important;
  height: 100vh !important;
  display: flex !important;
  align-items: center !important;
  justify-content: center !important;
  -webkit-font-smoothing: antialiased;
}
.slide-content {
  position: relative !important;
  overflow: hidden !important;
  transform-origin: center center;
}
.animated, [data-animation], .animate, [data-animate],
.anim-slide, .anim-par, .anim-seq, [data-anim] {
  will-change: transform, opacity;
  backface-visibility: hidden;
}
.animate-active { transition: all 0.5s cubic-bezier(0.23, 1, 0.32, 1); }
`
